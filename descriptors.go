package cgin

import (
	"sort"

	vk "github.com/vulkan-go/vulkan"
)

// DescriptorPoolSizes counts the descriptors of each type the passes bind, in
// ascending type order. A pool with these sizes and one set per pass can serve all
// of them. It must be created before the passes are registered.
func DescriptorPoolSizes(passes []Pass) []vk.DescriptorPoolSize {
	counts := map[vk.DescriptorType]uint32{}
	for _, p := range passes {
		for _, u := range p.Uses() {
			if u.Binding >= 0 {
				counts[u.Access.DescriptorType()]++
			}
		}
	}
	sizes := make([]vk.DescriptorPoolSize, 0, len(counts))
	for t, n := range counts {
		sizes = append(sizes, vk.DescriptorPoolSize{Type: t, DescriptorCount: n})
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i].Type < sizes[j].Type })
	return sizes
}
