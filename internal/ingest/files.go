package ingest

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const PDFMimeType = "application/pdf"

// File is one uploaded file as declared by its sender.
type File interface {
	Name() string
	ContentType() string
	Open() (io.ReadCloser, error)
}

type multipartFile struct {
	header *multipart.FileHeader
}

// FromMultipart wraps a multipart upload. The declared type is the part's
// Content-Type header, exactly as the browser sent it.
func FromMultipart(header *multipart.FileHeader) File {
	return multipartFile{header: header}
}

func (f multipartFile) Name() string {
	return f.header.Filename
}

func (f multipartFile) ContentType() string {
	return f.header.Header.Get("Content-Type")
}

func (f multipartFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

type diskFile struct {
	path        string
	contentType string
}

// FromPath wraps a file on disk. Its declared type is derived from the
// extension, then from the leading bytes when the extension is unknown.
func FromPath(path string) File {
	return diskFile{path: path, contentType: detectContentType(path)}
}

func (f diskFile) Name() string {
	return filepath.Base(f.path)
}

func (f diskFile) ContentType() string {
	return f.contentType
}

func (f diskFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

func detectContentType(path string) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		mediaType, _, err := mime.ParseMediaType(byExt)
		if err == nil {
			return mediaType
		}
		return byExt
	}

	fh, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer fh.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(fh, head)
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(head[:n]))
	if err != nil {
		return ""
	}
	return mediaType
}
