// Package indexctl loads index definitions for a revision from the
// resource's side file, using an XML-document accessor the way
// document-shaped-record systems use antchfx/xmlquery + antchfx/xpath
// for path-addressed lookups, rather than a bespoke parser.
package indexctl

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"revtree/pkg/rerr"
)

// Definition is one <index> element's attributes from the
// definitions file.
type Definition struct {
	Name string
	Kind string
	Path string
}

// Controller exposes index definitions for a bound revision.
type Controller interface {
	Definitions() []Definition
}

// documentController wraps a parsed XML document.
type documentController struct {
	definitions []Definition
}

func (c *documentController) Definitions() []Definition {
	return c.definitions
}

// empty is returned when the definitions file is absent, which is not
// an error.
var empty = &documentController{}

// Load reads resourceDir/INDEXES/<revision>.xml and returns its
// <index> definitions. A missing file returns the empty controller,
// not an error; a malformed file fails with IO.
func Load(resourceDir string, revision int64) (Controller, error) {
	path := filepath.Join(resourceDir, "INDEXES", fmt.Sprintf("%d.xml", revision))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return nil, rerr.WrapIO("opening index definitions", err)
	}
	defer f.Close()

	doc, err := xmlquery.Parse(f)
	if err != nil {
		return nil, rerr.WrapIO("parsing index definitions", err)
	}

	expr, err := xpath.Compile("//index")
	if err != nil {
		return nil, rerr.WrapIO("compiling index definitions query", err)
	}

	var definitions []Definition
	for _, n := range xmlquery.QuerySelectorAll(doc, expr) {
		definitions = append(definitions, Definition{
			Name: n.SelectAttr("name"),
			Kind: n.SelectAttr("kind"),
			Path: n.SelectAttr("path"),
		})
	}
	return &documentController{definitions: definitions}, nil
}
