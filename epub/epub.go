// Package epub reads, translates, and writes EPUB containers.
//
// An EPUB file is a zip archive holding a META-INF/container.xml pointer, an
// OPF package document (metadata, manifest, spine), and the content
// resources the manifest lists. This package keeps every resource byte
// stream intact except the document items it is asked to translate and the
// language element of the package metadata; structure, table of contents,
// and file names are carried through verbatim.
package epub

import "encoding/xml"

// ContainerPath is the fixed location of the OPF pointer inside the archive.
const ContainerPath = "META-INF/container.xml"

// MimetypeValue is the required content of the mimetype entry.
const MimetypeValue = "application/epub+zip"

// Document media types recognized as translatable content.
var documentMediaTypes = map[string]bool{
	"application/xhtml+xml": true,
	"text/html":             true,
}

// Navigation media types (NCX and EPUB3 nav documents are compared, never rewritten).
const ncxMediaType = "application/x-dtbncx+xml"

// Container mirrors META-INF/container.xml.
type Container struct {
	XMLName   xml.Name   `xml:"container"`
	Version   string     `xml:"version,attr"`
	Rootfiles []Rootfile `xml:"rootfiles>rootfile"`
}

// Rootfile points at a package document.
type Rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// Package mirrors the OPF package document.
type Package struct {
	XMLName  xml.Name `xml:"package"`
	Version  string   `xml:"version,attr"`
	UniqueID string   `xml:"unique-identifier,attr"`
	Metadata Metadata `xml:"metadata"`
	Manifest Manifest `xml:"manifest"`
	Spine    Spine    `xml:"spine"`
}

// Metadata holds the Dublin Core metadata of the package document.
type Metadata struct {
	Title      string `xml:"title"`
	Language   string `xml:"language"`
	Identifier string `xml:"identifier"`
	Creator    string `xml:"creator"`
	Publisher  string `xml:"publisher"`
	Date       string `xml:"date"`
}

// Manifest lists every resource of the publication.
type Manifest struct {
	Items []Item `xml:"item"`
}

// Item is one manifest entry.
type Item struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// Spine gives the default reading order.
type Spine struct {
	TOC      string    `xml:"toc,attr"`
	ItemRefs []ItemRef `xml:"itemref"`
}

// ItemRef is one spine entry.
type ItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// Resource is one archive entry: its zip name and raw bytes.
type Resource struct {
	Name string
	Data []byte
}

// Book is an EPUB publication loaded into memory. Resources preserve the
// archive order of the original file (the mimetype entry is implicit and
// regenerated on write).
type Book struct {
	Resources []Resource
	OPFPath   string
	Package   Package
}

// Resource returns the named resource, or nil when absent.
func (b *Book) Resource(name string) *Resource {
	for i := range b.Resources {
		if b.Resources[i].Name == name {
			return &b.Resources[i]
		}
	}
	return nil
}

// DocumentNames returns the archive names of the manifest's document items,
// in manifest order.
func (b *Book) DocumentNames() []string {
	var names []string
	for _, item := range b.Package.Manifest.Items {
		if documentMediaTypes[item.MediaType] {
			names = append(names, resolveHref(b.OPFPath, item.Href))
		}
	}
	return names
}

// NavNames returns the archive names of navigation resources (NCX and EPUB3
// nav documents), in manifest order.
func (b *Book) NavNames() []string {
	var names []string
	for _, item := range b.Package.Manifest.Items {
		if item.MediaType == ncxMediaType || hasProperty(item.Properties, "nav") {
			names = append(names, resolveHref(b.OPFPath, item.Href))
		}
	}
	return names
}

// IsDocument reports whether the named resource is a translatable document
// item per the manifest.
func (b *Book) IsDocument(name string) bool {
	for _, doc := range b.DocumentNames() {
		if doc == name {
			return true
		}
	}
	return false
}
