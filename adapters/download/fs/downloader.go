package downloadfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-contract-card/contract"
)

// maxNameAttempts bounds the " (n)" suffixes tried before giving up.
const maxNameAttempts = 1000

// Downloader saves delivered documents into a directory, the way a browser
// saves downloads: an existing file is never replaced unless Overwrite is set,
// the new file gets a " (n)" suffix instead.
type Downloader struct {
	Dir       string
	Overwrite bool
	Logger    contract.Logger
}

var _ contract.Downloader = (*Downloader)(nil)

// NewDownloader creates a directory-backed downloader.
func NewDownloader(dir string) *Downloader {
	return &Downloader{Dir: dir}
}

// Deliver writes file into the download directory.
func (d *Downloader) Deliver(ctx context.Context, file contract.DownloadFile) error {
	_, err := d.Save(ctx, file)
	return err
}

// Save writes file and returns the path it was saved under.
func (d *Downloader) Save(ctx context.Context, file contract.DownloadFile) (string, error) {
	if d == nil {
		return "", contract.NewError(contract.KindInternal, "downloader is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d.Dir == "" {
		return "", contract.NewError(contract.KindValidation, "download directory is required", nil)
	}

	target, err := d.resolvePath(file.Filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", contract.NewError(contract.KindInternal, "create download directory", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return "", contract.NewError(contract.KindInternal, "create download file", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(file.Data); err != nil {
		return "", contract.NewError(contract.KindInternal, "write download file", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", contract.NewError(contract.KindInternal, "sync download file", err)
	}
	if err := tmp.Close(); err != nil {
		return "", contract.NewError(contract.KindInternal, "close download file", err)
	}
	if d.Overwrite {
		if err := os.Rename(tmp.Name(), target); err != nil {
			return "", contract.NewError(contract.KindInternal, "save download file", err)
		}
	} else {
		target, err = linkFreeName(tmp.Name(), target)
		if err != nil {
			return "", err
		}
	}

	d.logger().Infof("saved %s (%d bytes)", target, len(file.Data))
	return target, nil
}

// resolvePath keeps only the base name so a title can never escape Dir.
func (d *Downloader) resolvePath(filename string) (string, error) {
	name := strings.TrimSpace(filename)
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	if name == "" || name == "." || name == ".." {
		return "", contract.NewError(contract.KindValidation, "invalid download filename", nil)
	}
	root, err := filepath.Abs(d.Dir)
	if err != nil {
		return "", contract.NewError(contract.KindInternal, "resolve download directory", err)
	}
	return filepath.Join(root, name), nil
}

func (d *Downloader) logger() contract.Logger {
	if d.Logger == nil {
		return contract.NopLogger{}
	}
	return d.Logger
}

// linkFreeName hard links src under target, or under the first free
// "name (n).ext" variant. A name is claimed only by a successful link, so
// concurrent saves never share one.
func linkFreeName(src, target string) (string, error) {
	ext := filepath.Ext(target)
	base := strings.TrimSuffix(target, ext)
	candidate := target
	for i := 1; i <= maxNameAttempts; i++ {
		err := os.Link(src, candidate)
		if err == nil {
			return candidate, nil
		}
		if !os.IsExist(err) {
			return "", contract.NewError(contract.KindInternal, "save download file", err)
		}
		candidate = fmt.Sprintf("%s (%d)%s", base, i, ext)
	}
	return "", contract.NewError(contract.KindInternal, fmt.Sprintf("no free download name for %q", filepath.Base(target)), nil)
}
