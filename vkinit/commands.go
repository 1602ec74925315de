package vkinit

import (
	"github.com/vkngwrapper/core/v3/core1_0"
)

// BeginSingleTimeCommands allocates a one-shot primary command buffer from
// pool and begins recording into it.
func (d *Device) BeginSingleTimeCommands(pool core1_0.CommandPool) (core1_0.CommandBuffer, error) {
	buffers, _, err := d.Driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return core1_0.CommandBuffer{}, err
	}

	buffer := buffers[0]
	_, err = d.Driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	return buffer, err
}

// EndSingleTimeCommands submits buffer on the graphics queue, waits for the
// queue to drain, and frees the buffer.
func (d *Device) EndSingleTimeCommands(buffer core1_0.CommandBuffer) error {
	_, err := d.Driver.EndCommandBuffer(buffer)
	if err != nil {
		return err
	}

	_, err = d.Driver.QueueSubmit(d.GraphicsQueue, nil,
		core1_0.SubmitInfo{
			CommandBuffers: []core1_0.CommandBuffer{buffer},
		},
	)
	if err != nil {
		return err
	}

	_, err = d.Driver.QueueWaitIdle(d.GraphicsQueue)
	if err != nil {
		return err
	}

	d.Driver.FreeCommandBuffers(buffer)
	return nil
}

// CopyBuffer copies size bytes from srcBuffer to dstBuffer on the graphics
// queue and waits for the copy to finish.
func (d *Device) CopyBuffer(pool core1_0.CommandPool, srcBuffer core1_0.Buffer, dstBuffer core1_0.Buffer, size int) error {
	buffer, err := d.BeginSingleTimeCommands(pool)
	if err != nil {
		return err
	}

	err = d.Driver.CmdCopyBuffer(buffer, srcBuffer, dstBuffer,
		core1_0.BufferCopy{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      size,
		},
	)
	if err != nil {
		return err
	}

	return d.EndSingleTimeCommands(buffer)
}

// CopyBufferToImage copies a tightly-packed buffer into the first mip level
// of image, which must already be in the transfer destination layout.
func (d *Device) CopyBufferToImage(pool core1_0.CommandPool, buffer core1_0.Buffer, image core1_0.Image, width, height int) error {
	cmdBuffer, err := d.BeginSingleTimeCommands(pool)
	if err != nil {
		return err
	}

	err = d.Driver.CmdCopyBufferToImage(cmdBuffer, buffer, image, core1_0.ImageLayoutTransferDstOptimal,
		core1_0.BufferImageCopy{
			BufferOffset:      0,
			BufferRowLength:   0,
			BufferImageHeight: 0,

			ImageSubresource: core1_0.ImageSubresourceLayers{
				AspectMask:     core1_0.ImageAspectColor,
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageOffset: core1_0.Offset3D{X: 0, Y: 0, Z: 0},
			ImageExtent: core1_0.Extent3D{Width: width, Height: height, Depth: 1},
		},
	)
	if err != nil {
		return err
	}

	return d.EndSingleTimeCommands(cmdBuffer)
}
