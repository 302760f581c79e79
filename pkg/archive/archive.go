// Package archive packages a dataset folder into a single zip file.
package archive

import (
	"context"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"

	"github.com/askiada/dvpublish/pkg/publish/model"
)

// DefaultName is the file name of the archive uploaded to the repository.
const DefaultName = "data.zip"

// Extension is the extension every archive must carry.
const Extension = ".zip"

// modified is the timestamp stored for every entry so that equal trees give equal archives.
var modified = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Artifact is an archive written on local storage.
type Artifact struct {
	Path string
	Size int64
	// Digest is the hex encoded BLAKE3 hash of the archive.
	Digest string
}

// Remove deletes the archive. Removing an archive that is already gone is not an error.
func (a *Artifact) Remove() error {
	err := os.Remove(a.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return model.WrapError(model.KindIO, err, "unable to remove archive "+a.Path)
	}

	return nil
}

// Zipper writes archives named Name in folder Dir.
type Zipper struct {
	Dir  string
	Name string
}

// NewZipper returns a Zipper writing dir/name. Empty values default to the working directory and DefaultName.
func NewZipper(dir, name string) *Zipper {
	if dir == "" {
		dir = "."
	}

	if name == "" {
		name = DefaultName
	}

	return &Zipper{Dir: dir, Name: name}
}

// Path returns the location of the archive.
func (z *Zipper) Path() string {
	return filepath.Join(z.Dir, z.Name)
}

// Archive packs the tree under source into the archive, overwriting any previous one.
// Entry names are relative to source. Symbolic links are stored as the file or folder they point to.
func (z *Zipper) Archive(ctx context.Context, source string) (*Artifact, error) {
	if !strings.HasSuffix(z.Name, Extension) {
		return nil, model.NewError(model.KindInput, "archive name %s must have %s extension", z.Name, Extension)
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, model.WrapError(model.KindIO, err, "unable to read source "+source)
	}

	if !info.IsDir() {
		return nil, model.NewError(model.KindIO, "source %s is not a folder", source)
	}

	target := z.Path()

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return nil, model.WrapError(model.KindIO, err, "unable to resolve archive path")
	}

	file, err := os.Create(target)
	if err != nil {
		return nil, model.WrapError(model.KindIO, err, "unable to create archive "+target)
	}

	err = writeZip(ctx, file, source, absTarget)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = errors.Wrap(closeErr, "unable to close archive")
	}

	if err != nil {
		_ = os.Remove(target)

		return nil, model.WrapError(model.KindIO, err, "unable to write archive "+target)
	}

	artifact, err := describe(target)
	if err != nil {
		_ = os.Remove(target)

		return nil, err
	}

	return artifact, nil
}

func writeZip(ctx context.Context, wrt io.Writer, source, absTarget string) error {
	zipWriter := zip.NewWriter(wrt)

	resolved, err := filepath.EvalSymlinks(source)
	if err != nil {
		return errors.Wrapf(err, "unable to resolve %s", source)
	}

	w := &treeWriter{zipWriter: zipWriter, absTarget: absTarget}

	err = w.addTree(ctx, source, "", map[string]bool{resolved: true})
	if err != nil {
		return err
	}

	return errors.Wrap(zipWriter.Close(), "unable to finish archive")
}

// treeWriter adds a folder tree to an archive. Symbolic links are followed: a link is stored as
// the file or folder it points to. Dangling links and links back to a folder being walked are
// not descended into.
type treeWriter struct {
	zipWriter *zip.Writer
	absTarget string
}

// addTree adds the entries of dir, in lexical order, under the prefix name.
// ancestors holds the resolved paths of the folders being walked.
func (w *treeWriter) addTree(ctx context.Context, dir, prefix string, ancestors map[string]bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "unable to read %s", dir)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		path := filepath.Join(dir, entry.Name())
		name := prefix + entry.Name()

		absPath, err := filepath.Abs(path)
		if err != nil {
			return errors.Wrap(err, "unable to resolve path")
		}

		if absPath == w.absTarget {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			if entry.Type()&fs.ModeSymlink != 0 && errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return errors.Wrapf(err, "unable to stat %s", path)
		}

		switch {
		case info.IsDir():
			err = w.addFolder(ctx, path, name, info, ancestors)
		case info.Mode().IsRegular():
			err = w.addFile(path, name, info)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (w *treeWriter) addFolder(ctx context.Context, path, name string, info fs.FileInfo, ancestors map[string]bool) error {
	header, err := w.header(info, name+"/")
	if err != nil {
		return err
	}

	header.Method = zip.Store

	_, err = w.zipWriter.CreateHeader(header)
	if err != nil {
		return errors.Wrapf(err, "unable to add folder %s", name)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return errors.Wrapf(err, "unable to resolve %s", path)
	}

	if ancestors[resolved] {
		return nil
	}

	ancestors[resolved] = true
	defer delete(ancestors, resolved)

	return w.addTree(ctx, path, name+"/", ancestors)
}

func (w *treeWriter) addFile(path, name string, info fs.FileInfo) error {
	header, err := w.header(info, name)
	if err != nil {
		return err
	}

	header.Method = zip.Deflate

	dst, err := w.zipWriter.CreateHeader(header)
	if err != nil {
		return errors.Wrapf(err, "unable to add file %s", name)
	}

	src, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", path)
	}
	defer src.Close()

	_, err = io.Copy(dst, src)

	return errors.Wrapf(err, "unable to copy %s", path)
}

// header describes info, the followed file info of an entry, under name.
func (w *treeWriter) header(info fs.FileInfo, name string) (*zip.FileHeader, error) {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create header for %s", name)
	}

	header.Name = name
	header.Modified = modified

	return header, nil
}

func describe(path string) (*Artifact, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, model.WrapError(model.KindIO, err, "unable to open archive "+path)
	}
	defer file.Close()

	hasher := blake3.New()

	size, err := io.Copy(hasher, file)
	if err != nil {
		return nil, model.WrapError(model.KindIO, err, "unable to hash archive "+path)
	}

	return &Artifact{
		Path:   path,
		Size:   size,
		Digest: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}
