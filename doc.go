/*
Package cgin implements a small render graph atop Vulkan. Client code declares passes, the
buffers and images each pass touches and how it touches them, and the order passes depend on
one another. The package then records every pass once, inserting the pipeline barriers and image
layout transitions needed between them, and replays the recorded work each frame.

Access descriptors

Every use of a resource is described by an Access, a pair of an Operation (what the pass does
with the resource) and a Stage (where in the pipeline it happens). Operations at or after
ColorAttachmentOutput are writes. From an Access the package derives the Vulkan access mask,
pipeline stage mask, image layout, descriptor type and aspect the use requires.

	InitialAccess	{NoOperation, StageInitial}, the state of a resource nothing has touched yet
	Hazard		a predecessor access and a successor access to the same resource
	Graph		the caller declared ordering edges between passes and the hazards derived from them

Lifecycle

Resources are configured first and allocated later:

	1. Configure resources with NewBuffer, NewImage or NewForeignImage
	2. Construct passes over those resources, this registers each pass's idle fence with the resources it uses
	3. Call Initialize on every resource, usage flags are derived from every pass that declared a use
	4. Call Graph.RegisterPasses with the passes in dependency order, this records every pass
	5. Call Execute on every pass, once per frame, in dependency order

The Device interface is the only thing the package needs from the outside world, package
github.com/Daniel-JSmith/cgin1/vkg implements it over Vulkan.
*/
package cgin
