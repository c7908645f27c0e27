// Package dav serves the virtual media tree over WebDAV. The tree is
// strictly read-only: every mutating method fails with a permission
// error.
package dav

import (
	"context"
	"io"
	"io/fs"
	"os"
	"time"

	"golang.org/x/net/webdav"

	"github.com/ebrainte/rd-dav-server/internal/vfs"
)

// Opener streams remote file content by href, implemented by the
// debrid client.
type Opener interface {
	Open(ctx context.Context, href string, offset, length int64) (io.ReadCloser, error)
}

// FS adapts the snapshot store to webdav.FileSystem. Each call resolves
// against the snapshot current at that moment; open files pin the node
// they were opened with.
type FS struct {
	store  *vfs.Store
	opener Opener
}

// NewFS creates the read-only WebDAV filesystem.
func NewFS(store *vfs.Store, opener Opener) *FS {
	return &FS{store: store, opener: opener}
}

func (f *FS) Mkdir(ctx context.Context, name string, perm os.FileMode) error {
	return os.ErrPermission
}

func (f *FS) RemoveAll(ctx context.Context, name string) error {
	return os.ErrPermission
}

func (f *FS) Rename(ctx context.Context, oldName, newName string) error {
	return os.ErrPermission
}

func (f *FS) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	node, ok := f.store.Current().Resolve(name)
	if !ok {
		return nil, os.ErrNotExist
	}
	return fileInfo{node}, nil
}

func (f *FS) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (webdav.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, os.ErrPermission
	}

	node, ok := f.store.Current().Resolve(name)
	if !ok {
		return nil, os.ErrNotExist
	}

	if node.IsDir {
		return &dirFile{node: node}, nil
	}
	return &remoteFile{ctx: ctx, node: node, opener: f.opener}, nil
}

// fileInfo exposes a tree node as fs.FileInfo.
type fileInfo struct {
	node *vfs.Node
}

func (fi fileInfo) Name() string { return fi.node.Name }
func (fi fileInfo) Size() int64  { return fi.node.Size }
func (fi fileInfo) Mode() os.FileMode {
	if fi.node.IsDir {
		return os.ModeDir | 0o555
	}
	return 0o444
}
func (fi fileInfo) ModTime() time.Time { return fi.node.ModTime }
func (fi fileInfo) IsDir() bool        { return fi.node.IsDir }
func (fi fileInfo) Sys() any           { return nil }

// dirFile serves directory listings.
type dirFile struct {
	node   *vfs.Node
	offset int
}

func (d *dirFile) Close() error               { return nil }
func (d *dirFile) Read(p []byte) (int, error) { return 0, os.ErrInvalid }
func (d *dirFile) Write(p []byte) (int, error) {
	return 0, os.ErrPermission
}

func (d *dirFile) Seek(offset int64, whence int) (int64, error) {
	if offset == 0 && whence == io.SeekStart {
		d.offset = 0
		return 0, nil
	}
	return 0, os.ErrInvalid
}

func (d *dirFile) Stat() (os.FileInfo, error) { return fileInfo{d.node}, nil }

// Readdir follows os.File semantics: a positive count pages through the
// listing, count <= 0 returns everything remaining.
func (d *dirFile) Readdir(count int) ([]fs.FileInfo, error) {
	children := d.node.Children()
	if d.offset >= len(children) {
		if count > 0 {
			return nil, io.EOF
		}
		return nil, nil
	}

	remaining := children[d.offset:]
	if count > 0 && count < len(remaining) {
		remaining = remaining[:count]
	}
	d.offset += len(remaining)

	infos := make([]fs.FileInfo, len(remaining))
	for i, child := range remaining {
		infos[i] = fileInfo{child}
	}
	return infos, nil
}
