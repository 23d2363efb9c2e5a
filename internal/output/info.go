package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Info summarizes a written document.
type Info struct {
	Version     string
	Generator   string
	Collections map[string]int
	BufferBytes int
	ImageURIs   []string
}

// Names returns the collection names in sorted order.
func (i *Info) Names() []string {
	names := make([]string, 0, len(i.Collections))
	for name := range i.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Inspect reads a document from disk and summarizes it.
func Inspect(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseInfo(data)
}

// ParseInfo summarizes an encoded document.
func ParseInfo(data []byte) (*Info, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	info := &Info{Collections: make(map[string]int)}

	if a, ok := raw["asset"]; ok {
		var asset struct {
			Generator string `json:"generator"`
			Version   string `json:"version"`
		}
		if err := json.Unmarshal(a, &asset); err != nil {
			return nil, fmt.Errorf("parsing asset: %w", err)
		}
		info.Version, info.Generator = asset.Version, asset.Generator
	}

	for key, value := range raw {
		if key == "asset" || key == "scene" {
			continue
		}
		var members map[string]json.RawMessage
		if err := json.Unmarshal(value, &members); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		info.Collections[key] = len(members)
	}

	if b, ok := raw["buffers"]; ok {
		var buffers map[string]struct {
			ByteLength int `json:"byteLength"`
		}
		if err := json.Unmarshal(b, &buffers); err != nil {
			return nil, fmt.Errorf("parsing buffers: %w", err)
		}
		for _, buf := range buffers {
			info.BufferBytes += buf.ByteLength
		}
	}

	if im, ok := raw["images"]; ok {
		var images map[string]struct {
			URI string `json:"uri"`
		}
		if err := json.Unmarshal(im, &images); err != nil {
			return nil, fmt.Errorf("parsing images: %w", err)
		}
		for _, img := range images {
			info.ImageURIs = append(info.ImageURIs, img.URI)
		}
		sort.Strings(info.ImageURIs)
	}

	return info, nil
}
