package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
)

// Entry is one named buffer inside an archive.
type Entry struct {
	Name string
	Data []byte
}

// Codec turns a set of entries into one buffer and back.
type Codec interface {
	Pack(entries []Entry) ([]byte, error)
	Unpack(data []byte) ([]Entry, error)
}

// ZipCodec stores entries deflated in a zip container.
type ZipCodec struct{}

func (ZipCodec) Pack(entries []Entry) ([]byte, error) {
	const op = "archive.ZipCodec.Pack"

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

func (ZipCodec) Unpack(data []byte) ([]Entry, error) {
	const op = "archive.ZipCodec.Unpack"

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, f.Name, err)
		}
		entries = append(entries, Entry{Name: f.Name, Data: b})
	}
	return entries, nil
}
