package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// ReadFile opens and parses an EPUB file.
func ReadFile(name string) (*Book, error) {
	f, err := os.Open(name) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening EPUB: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat EPUB: %w", err)
	}

	return Read(f, info.Size())
}

// ReadBytes parses an EPUB held in memory.
func ReadBytes(data []byte) (*Book, error) {
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read parses an EPUB from a random-access byte source.
func Read(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening EPUB as zip: %w", err)
	}

	book := &Book{}
	for _, zf := range zr.File {
		if zf.Name == "mimetype" {
			// Regenerated on write; validated here when present
			data, err := readZipFile(zf)
			if err != nil {
				return nil, err
			}
			if mt := strings.TrimSpace(string(data)); mt != MimetypeValue {
				return nil, fmt.Errorf("unexpected mimetype %q", mt)
			}
			continue
		}
		if strings.HasSuffix(zf.Name, "/") {
			continue
		}
		data, err := readZipFile(zf)
		if err != nil {
			return nil, err
		}
		book.Resources = append(book.Resources, Resource{Name: zf.Name, Data: data})
	}

	opfPath, err := findOPFPath(book)
	if err != nil {
		return nil, err
	}
	book.OPFPath = opfPath

	opf := book.Resource(opfPath)
	if opf == nil {
		return nil, fmt.Errorf("package document %q not found in archive", opfPath)
	}
	if err := xml.Unmarshal(opf.Data, &book.Package); err != nil {
		return nil, fmt.Errorf("parsing package document %q: %w", opfPath, err)
	}

	return book, nil
}

// findOPFPath locates the package document via META-INF/container.xml.
func findOPFPath(book *Book) (string, error) {
	res := book.Resource(ContainerPath)
	if res == nil {
		return "", fmt.Errorf("%s not found in archive", ContainerPath)
	}

	var container Container
	if err := xml.Unmarshal(res.Data, &container); err != nil {
		return "", fmt.Errorf("parsing %s: %w", ContainerPath, err)
	}

	for _, rf := range container.Rootfiles {
		if rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	return "", fmt.Errorf("%s lists no rootfile", ContainerPath)
}

func readZipFile(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", zf.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", zf.Name, err)
	}
	return data, nil
}

// resolveHref turns a manifest href into an archive name, relative to the
// package document's directory.
func resolveHref(opfPath, href string) string {
	dir := path.Dir(opfPath)
	if dir == "." {
		return path.Clean(href)
	}
	return path.Clean(path.Join(dir, href))
}

// hasProperty reports whether a space-separated properties attribute
// contains the given token.
func hasProperty(properties, token string) bool {
	for _, p := range strings.Fields(properties) {
		if p == token {
			return true
		}
	}
	return false
}
