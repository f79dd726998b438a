package board

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/boardview/pkg/errors"
)

// Layer identifies one Gerber layer role.
type Layer string

const (
	LayerOutline      Layer = "outline"
	LayerTopCopper    Layer = "top-copper"
	LayerBottomCopper Layer = "bottom-copper"
	LayerTopSilk      Layer = "top-silk"
	LayerBottomSilk   Layer = "bottom-silk"
	LayerTopMask      Layer = "top-mask"
	LayerBottomMask   Layer = "bottom-mask"
)

// LayerSet holds the paths of the layer files found for a board. An empty
// path means the layer is absent.
type LayerSet struct {
	Outline      string `json:"outline,omitempty"`
	TopCopper    string `json:"top_copper,omitempty"`
	BottomCopper string `json:"bottom_copper,omitempty"`
	TopSilk      string `json:"top_silk,omitempty"`
	BottomSilk   string `json:"bottom_silk,omitempty"`
	TopMask      string `json:"top_mask,omitempty"`
	BottomMask   string `json:"bottom_mask,omitempty"`
}

// LayerRef pairs a layer role with its file path.
type LayerRef struct {
	Layer Layer
	Path  string
}

// FaceStack is the ordered set of layers drawn for one face.
type FaceStack struct {
	Outline string
	Copper  string
	Mask    string
	Silk    string
}

// BoundsLayers returns the present layers that contribute to the board
// bounding box: outline, copper and silkscreen. Soldermask is excluded.
func (s LayerSet) BoundsLayers() []LayerRef {
	return present([]LayerRef{
		{LayerOutline, s.Outline},
		{LayerTopCopper, s.TopCopper},
		{LayerBottomCopper, s.BottomCopper},
		{LayerTopSilk, s.TopSilk},
		{LayerBottomSilk, s.BottomSilk},
	})
}

// Paths returns every present layer.
func (s LayerSet) Paths() []LayerRef {
	return present([]LayerRef{
		{LayerOutline, s.Outline},
		{LayerTopCopper, s.TopCopper},
		{LayerBottomCopper, s.BottomCopper},
		{LayerTopSilk, s.TopSilk},
		{LayerBottomSilk, s.BottomSilk},
		{LayerTopMask, s.TopMask},
		{LayerBottomMask, s.BottomMask},
	})
}

// Empty reports whether no layer was found.
func (s LayerSet) Empty() bool {
	return len(s.Paths()) == 0
}

// ForFace returns the layers drawn when viewing the given face.
func (s LayerSet) ForFace(f Face) FaceStack {
	if f == Bottom {
		return FaceStack{Outline: s.Outline, Copper: s.BottomCopper, Mask: s.BottomMask, Silk: s.BottomSilk}
	}
	return FaceStack{Outline: s.Outline, Copper: s.TopCopper, Mask: s.TopMask, Silk: s.TopSilk}
}

// Hash returns a content hash over every present layer file. Two folders
// with identical layer files hash the same, which lets rendered images be
// shared through a persistent cache.
func (s LayerSet) Hash() (string, error) {
	h := sha256.New()
	for _, ref := range s.Paths() {
		io.WriteString(h, string(ref.Layer))
		h.Write([]byte{0})
		f, err := os.Open(ref.Path)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "open layer %s", ref.Path)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInternal, err, "read layer %s", ref.Path)
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func present(refs []LayerRef) []LayerRef {
	out := refs[:0]
	for _, r := range refs {
		if r.Path != "" {
			out = append(out, r)
		}
	}
	return out
}

// outlineExtensions are tried in order; the first match wins.
var outlineExtensions = []string{"GM1", "GM", "GKO", "GML"}

// Discover scans folder for Gerber layer files by extension (GTL, GBL, GTO,
// GBO, GTS, GBS and an outline from GM1, GM, GKO or GML). Extension matching
// is case-insensitive. Subfolders are not searched.
func Discover(folder string) (LayerSet, error) {
	if err := errors.ValidateDir(folder); err != nil {
		return LayerSet{}, err
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return LayerSet{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read folder %s", folder)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	find := func(ext string) string {
		for _, n := range names {
			if strings.EqualFold(strings.TrimPrefix(filepath.Ext(n), "."), ext) {
				return filepath.Join(folder, n)
			}
		}
		return ""
	}

	set := LayerSet{
		TopCopper:    find("GTL"),
		BottomCopper: find("GBL"),
		TopSilk:      find("GTO"),
		BottomSilk:   find("GBO"),
		TopMask:      find("GTS"),
		BottomMask:   find("GBS"),
	}
	for _, ext := range outlineExtensions {
		if p := find(ext); p != "" {
			set.Outline = p
			break
		}
	}
	return set, nil
}
