package vkg

import (
	vk "github.com/vulkan-go/vulkan"

	cgin "github.com/Daniel-JSmith/cgin1"
)

// DescriptorSet is a binding of resources to a descriptor, per a specific DescriptorSetLayout
type DescriptorSet struct {
	Device          *Device
	DescriptorPool  *DescriptorPool
	VKDescriptorSet vk.DescriptorSet
}

func vkDescriptorWrites(set vk.DescriptorSet, writes []cgin.DescriptorWrite) []vk.WriteDescriptorSet {
	ret := make([]vk.WriteDescriptorSet, 0, len(writes))
	for _, w := range writes {
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      uint32(w.Binding),
			DescriptorCount: 1,
			DescriptorType:  w.Type,
		}
		switch {
		case w.Buffer != nil:
			info := w.Buffer.(*Buffer).DSInfo()
			info.Offset = vk.DeviceSize(w.Offset)
			info.Range = vk.DeviceSize(w.Range)
			write.PBufferInfo = []vk.DescriptorBufferInfo{info}
		case w.Image != nil:
			write.PImageInfo = []vk.DescriptorImageInfo{w.Image.(*Image).DSInfo(w.Layout)}
		default:
			continue
		}
		ret = append(ret, write)
	}
	return ret
}

// Write points the bindings of the set at the given resources.
func (du *DescriptorSet) Write(writes []cgin.DescriptorWrite) {
	w := vkDescriptorWrites(du.VKDescriptorSet, writes)
	if len(w) == 0 {
		return
	}
	vk.UpdateDescriptorSets(du.Device.VKDevice, uint32(len(w)), w, 0, nil)
}
