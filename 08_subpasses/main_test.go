package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

func cacheTestApp() *subpassApp {
	logger := log.New()
	logger.SetOutput(io.Discard)

	app := &subpassApp{logger: logger}
	app.selection.Profile.VendorID = 0x10de
	app.selection.Profile.DeviceID = 0x2206
	app.selection.Profile.PipelineCacheUUID = uuid.MustParse("217f0988-a6ea-47a2-8f80-a0b4cbd58a21")
	return app
}

func cacheHeader(headerLength uint32, version core1_0.PipelineCacheHeaderVersion, vendorID, deviceID uint32, cacheUUID uuid.UUID) []byte {
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, common.ByteOrder, headerLength)
	_ = binary.Write(buf, common.ByteOrder, version)
	_ = binary.Write(buf, common.ByteOrder, vendorID)
	_ = binary.Write(buf, common.ByteOrder, deviceID)
	_ = binary.Write(buf, common.ByteOrder, cacheUUID)
	return buf.Bytes()
}

func TestValidatePipelineCacheAcceptsOwnDevice(t *testing.T) {
	app := cacheTestApp()
	profile := app.selection.Profile

	data := cacheHeader(32, core1_0.PipelineCacheHeaderVersion1, profile.VendorID, profile.DeviceID, profile.PipelineCacheUUID)
	data = append(data, 0xde, 0xad, 0xbe, 0xef)

	if !app.validatePipelineCache(data) {
		t.Error("expected a cache written by the selected device to validate")
	}
}

func TestValidatePipelineCacheRejectsForeignCache(t *testing.T) {
	app := cacheTestApp()
	profile := app.selection.Profile

	tests := []struct {
		name string
		data []byte
	}{
		{"vendor mismatch", cacheHeader(32, core1_0.PipelineCacheHeaderVersion1, 0x8086, profile.DeviceID, profile.PipelineCacheUUID)},
		{"device mismatch", cacheHeader(32, core1_0.PipelineCacheHeaderVersion1, profile.VendorID, 0x9999, profile.PipelineCacheUUID)},
		{"uuid mismatch", cacheHeader(32, core1_0.PipelineCacheHeaderVersion1, profile.VendorID, profile.DeviceID, uuid.MustParse("5f0c7127-4efa-47b1-82cc-fa0e25a9e35d"))},
		{"unsupported header version", cacheHeader(32, core1_0.PipelineCacheHeaderVersion(0), profile.VendorID, profile.DeviceID, profile.PipelineCacheUUID)},
		{"zero header length", cacheHeader(0, core1_0.PipelineCacheHeaderVersion1, profile.VendorID, profile.DeviceID, profile.PipelineCacheUUID)},
	}

	for _, tt := range tests {
		if app.validatePipelineCache(tt.data) {
			t.Errorf("%s: expected the cache to be rejected", tt.name)
		}
	}
}

func TestValidatePipelineCacheRejectsTruncated(t *testing.T) {
	app := cacheTestApp()
	profile := app.selection.Profile

	data := cacheHeader(32, core1_0.PipelineCacheHeaderVersion1, profile.VendorID, profile.DeviceID, profile.PipelineCacheUUID)

	if app.validatePipelineCache(data[:10]) {
		t.Error("expected a truncated header to be rejected")
	}
	if app.validatePipelineCache(nil) {
		t.Error("expected an empty cache to be rejected")
	}
}
