package vkg

import (
	"time"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Fence lets the host wait for submitted work.
type Fence struct {
	Device  *Device
	VKFence vk.Fence
}

// CreateFence creates a fence, optionally in the signaled state.
func (d *Device) CreateFence(signaled bool) (*Fence, error) {
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	err := vk.Error(vk.CreateFence(d.VKDevice, &fenceCreateInfo, nil, &fence))
	if err != nil {
		return nil, errors.Wrap(err, "create fence")
	}
	return &Fence{Device: d, VKFence: fence}, nil
}

// Signaled reports whether the fence is currently signaled.
func (f *Fence) Signaled() bool {
	return vk.GetFenceStatus(f.Device.VKDevice, f.VKFence) == vk.Success
}

func vkFences(fences []*Fence) []vk.Fence {
	f := make([]vk.Fence, len(fences))
	for i := range fences {
		f[i] = fences[i].VKFence
	}
	return f
}

// WaitForFences blocks until all or any of the fences are signaled, or the timeout passes.
func (d *Device) WaitForFences(waitForAll bool, ts time.Duration, fences ...*Fence) error {
	if len(fences) == 0 {
		return nil
	}

	wait := vk.Bool32(vk.False)
	if waitForAll {
		wait = vk.True
	}

	res := vk.WaitForFences(d.VKDevice, uint32(len(fences)), vkFences(fences), wait, uint64(ts.Nanoseconds()))
	if res == vk.Timeout {
		return errors.Errorf("fence wait timed out after %s", ts)
	}
	return errors.Wrap(vk.Error(res), "wait for fences")
}

// ResetFences moves the fences to the unsignaled state.
func (d *Device) ResetFences(fences ...*Fence) error {
	if len(fences) == 0 {
		return nil
	}
	return errors.Wrap(vk.Error(vk.ResetFences(d.VKDevice, uint32(len(fences)), vkFences(fences))), "reset fences")
}

func (f *Fence) Destroy() {
	vk.DestroyFence(f.Device.VKDevice, f.VKFence, nil)
}
