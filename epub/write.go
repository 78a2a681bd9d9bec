package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
)

// Write serializes a book as an EPUB archive. The mimetype entry is written
// first and stored uncompressed, as the container format requires; every
// other resource follows in its original order, deflated.
func Write(w io.Writer, book *Book) error {
	zw := zip.NewWriter(w)

	mt, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("creating mimetype entry: %w", err)
	}
	if _, err := mt.Write([]byte(MimetypeValue)); err != nil {
		return fmt.Errorf("writing mimetype entry: %w", err)
	}

	for _, res := range book.Resources {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:   res.Name,
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("creating entry %q: %w", res.Name, err)
		}
		if _, err := fw.Write(res.Data); err != nil {
			return fmt.Errorf("writing entry %q: %w", res.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

// WriteFile serializes a book to a file.
func WriteFile(name string, book *Book) error {
	f, err := os.Create(name) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating EPUB: %w", err)
	}

	if err := Write(f, book); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
