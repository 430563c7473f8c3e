/*
Package vkg is the Vulkan backend of cgin. Context implements cgin.Device on top of a
single logical device, and CommandBuffer implements cgin.CommandBuffer.

The package keeps the native Vulkan structures reachable: every wrapper exposes its
handle in a field prefixed with 'VK', so callers aren't limited by what is wrapped here.

Native Vulkan terms
	Instance 	the vulkan runtime instance
	PhysicalDevice	the physical hardware device
	LogicalDevice	a representation of the device which is the target of most of the vulkan apis.
	Pipeline	a description of how to process data on the GPU
	Queue 		a queue which work (comand buffers) may be submitted to
	DeviceMemory	a allocation of memory on the host or device for use by buffers and images
	Buffer		a description of some bit of data (vertex, index, or other)
	Image		a description of some image
	ImageView	a way of descibing how an image is utilized or viewed
	DescriptorSet 	a mapping of data for use by shaders
	DescriptorSetLayout a description of what data is in the descriptor set
	Swapchain	a grouping of images which are used to display graphical data

A windowed program using the render graph runs roughly as:

	1. glfw.Init, InitializeForGLFW, create a window with the NoAPI hint
	2. NewWindowContext
	3. Construct the resources and passes, wrapping the swapchain images with
	   cgin.NewForeignImage and giving each one a cgin.PresentPass
	4. Context.CreateDescriptorPool sized by cgin.DescriptorPoolSizes
	5. Initialize every resource
	6. Register the passes with a cgin.Graph, which prepares them
	7. Each frame: execute the passes in order, AcquireNextImage, execute the
	   matching present pass and Present

Headless programs call InitializeForComputeOnly and NewComputeContext instead and skip
the swapchain steps.

Memory

MemoryPool suballocates buffers and images out of large blocks of device memory, one
list of blocks per memory type, using a first fit allocator. Host visible blocks are
mapped once and stay mapped.
*/
package vkg
