package dav

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/ebrainte/rd-dav-server/internal/vfs"
)

// contentTypes maps media extensions to MIME types. Sniffing would
// trigger a remote read for every PROPFIND, so types come from the
// extension alone.
var contentTypes = map[string]string{
	".mkv": "video/x-matroska",
	".mp4": "video/mp4",
	".avi": "video/x-msvideo",
	".m4v": "video/x-m4v",
	".ts":  "video/mp2t",
	".wmv": "video/x-ms-wmv",
	".iso": "application/x-iso9660-image",
	".srt": "text/plain",
	".sub": "text/plain",
	".ass": "text/plain",
	".ssa": "text/plain",
	".vtt": "text/vtt",
}

// remoteFile streams one remote file. The HTTP body opens lazily on
// first read and reopens with a fresh range request after a seek, which
// is how players skip around inside a stream.
type remoteFile struct {
	ctx    context.Context
	node   *vfs.Node
	opener Opener

	pos  int64
	body io.ReadCloser
}

func (f *remoteFile) Read(p []byte) (int, error) {
	if f.body == nil {
		if f.pos >= f.node.Size {
			return 0, io.EOF
		}
		body, err := f.opener.Open(f.ctx, f.node.Href, f.pos, 0)
		if err != nil {
			return 0, err
		}
		f.body = body
	}

	n, err := f.body.Read(p)
	f.pos += int64(n)
	return n, err
}

func (f *remoteFile) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = f.pos + offset
	case io.SeekEnd:
		target = f.node.Size + offset
	default:
		return 0, os.ErrInvalid
	}

	if target < 0 {
		return 0, os.ErrInvalid
	}
	if target > f.node.Size {
		target = f.node.Size
	}

	if target != f.pos {
		if f.body != nil {
			f.body.Close()
			f.body = nil
		}
		f.pos = target
	}
	return f.pos, nil
}

func (f *remoteFile) Write(p []byte) (int, error) { return 0, os.ErrPermission }

func (f *remoteFile) Readdir(count int) ([]fs.FileInfo, error) {
	return nil, os.ErrInvalid
}

func (f *remoteFile) Stat() (os.FileInfo, error) { return fileInfo{f.node}, nil }

func (f *remoteFile) Close() error {
	if f.body != nil {
		err := f.body.Close()
		f.body = nil
		return err
	}
	return nil
}

// ContentType satisfies webdav.ContentTyper.
func (f *remoteFile) ContentType(ctx context.Context) (string, error) {
	if t, ok := contentTypes[strings.ToLower(path.Ext(f.node.Name))]; ok {
		return t, nil
	}
	return "application/octet-stream", nil
}
