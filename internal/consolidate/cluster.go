// Package consolidate groups mesh fragments by material and merges each group
// into a single mesh expressed in one local frame.
package consolidate

import (
	"github.com/google/uuid"

	"github.com/Faultbox/primgltf/pkg/scene"
)

// Cluster is the set of fragments sharing one material identity, in the
// order they were seen.
type Cluster struct {
	Hash      uuid.UUID
	Texture   scene.TextureEntry
	Fragments []scene.MeshFragment
}

// FaceCount returns the number of faces in the cluster.
func (c *Cluster) FaceCount() int {
	return len(c.Fragments)
}

// Group clusters fragments by the hash of their texture entry. Clusters are
// returned in first-seen order so the same input always yields the same output.
// Every fragment lands in exactly one cluster.
func Group(frags []scene.MeshFragment) []Cluster {
	var clusters []Cluster
	byHash := make(map[uuid.UUID]int)

	for _, frag := range frags {
		h := frag.Face.Texture.Hash()
		idx, ok := byHash[h]
		if !ok {
			idx = len(clusters)
			byHash[h] = idx
			clusters = append(clusters, Cluster{Hash: h, Texture: frag.Face.Texture})
		}
		clusters[idx].Fragments = append(clusters[idx].Fragments, frag)
	}
	return clusters
}
