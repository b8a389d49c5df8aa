package integrate

import (
	"io"
	"strings"

	"github.com/AssemblyStorm/mint/internal/asset"
	"github.com/AssemblyStorm/mint/internal/pak"
)

// dirNode is one level of the case-normalizing path trie built from the
// base game pak's file list, keyed by lowercased path component.
type dirNode struct {
	name     string
	children map[string]*dirNode
}

func newDirNode(name string) *dirNode {
	return &dirNode{name: name, children: make(map[string]*dirNode)}
}

// buildPathTrie indexes every component of every path in fsdPaths so
// that normalize can recover the case the base game uses for a path
// supplied by a mod in arbitrary case.
func buildPathTrie(fsdPaths []string) *dirNode {
	root := newDirNode("")
	for _, p := range fsdPaths {
		cur := root
		for _, c := range strings.Split(p, "/") {
			lower := strings.ToLower(c)
			next, ok := cur.children[lower]
			if !ok {
				next = newDirNode(c)
				cur.children[lower] = next
			}
			cur = next
		}
	}
	return root
}

// normalize rewrites path's casing to match the base game's, component
// by component, falling back to the supplied casing once the trie runs
// out of known children (e.g. for files introduced by a mod).
func (root *dirNode) normalize(path string) string {
	parts := strings.Split(path, "/")
	cur := root
	for i, c := range parts {
		if cur == nil {
			break
		}
		next, ok := cur.children[strings.ToLower(c)]
		if !ok {
			cur = nil
			break
		}
		parts[i] = next.name
		cur = next
	}
	return strings.Join(parts, "/")
}

// bundleWriter wraps the output pak writer with path case-normalization
// and paired-asset serialization. It is the sole owner of the output
// pak for the duration of an integration run.
type bundleWriter struct {
	pw   *pak.Writer
	trie *dirNode
}

func newBundleWriter(w io.Writer, fsdPaths []string) *bundleWriter {
	return &bundleWriter{pw: pak.NewWriter(w), trie: buildPathTrie(fsdPaths)}
}

func (b *bundleWriter) writeFile(path string, data []byte) error {
	return b.pw.WriteFile(b.trie.normalize(path), data)
}

func (b *bundleWriter) writeAsset(a *asset.Asset, path string) error {
	uassetBytes, uexpBytes, err := a.Write()
	if err != nil {
		return err
	}
	if err := b.writeFile(path+".uasset", uassetBytes); err != nil {
		return err
	}
	return b.writeFile(path+".uexp", uexpBytes)
}

func (b *bundleWriter) finish() error {
	return b.pw.Finish()
}
