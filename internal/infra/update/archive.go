package update

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
)

// extractZip 解壓到 root，返回寫入的文件（相對路徑）
// 條目路徑逃出 root 時整個壓縮包視為無效
func extractZip(fs afero.Fs, r io.ReaderAt, size int64, root string) ([]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrArchiveInvalid, "UPD010", err.Error())
	}

	// 先校驗全部條目，避免寫入一半才發現非法路徑
	for _, f := range zr.File {
		if _, err := safeJoin(root, f.Name); err != nil {
			return nil, err
		}
	}

	var files []string
	for _, f := range zr.File {
		dest, _ := safeJoin(root, f.Name)

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := fs.MkdirAll(dest, 0755); err != nil {
				return files, fmt.Errorf("創建目錄失敗: %w", err)
			}
			continue
		case mode&os.ModeSymlink != 0:
			continue
		}

		if err := writeEntry(fs, f, dest); err != nil {
			return files, err
		}
		rel, _ := filepath.Rel(root, dest)
		files = append(files, filepath.ToSlash(rel))
	}

	if len(files) == 0 {
		return nil, errors.Wrap(errors.ErrArchiveInvalid, "UPD011", "壓縮包中沒有文件")
	}
	return files, nil
}

func writeEntry(fs afero.Fs, f *zip.File, dest string) error {
	if err := fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("創建目錄失敗: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Wrap(errors.ErrArchiveInvalid, "UPD012", fmt.Sprintf("%s: %v", f.Name, err))
	}
	defer rc.Close()

	out, err := fs.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("創建文件失敗: %w", err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return errors.Wrap(errors.ErrArchiveInvalid, "UPD012", fmt.Sprintf("%s: %v", f.Name, err))
	}
	return out.Close()
}

func safeJoin(root, name string) (string, error) {
	clean := filepath.FromSlash(name)
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", errors.Wrap(errors.ErrArchiveInvalid, "UPD013", fmt.Sprintf("絕對路徑條目: %s", name))
	}

	dest := filepath.Join(root, clean)
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrap(errors.ErrArchiveInvalid, "UPD013", fmt.Sprintf("條目路徑越界: %s", name))
	}
	return dest, nil
}
