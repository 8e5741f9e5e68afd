// internal/writers/bundle.go
package writers

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"
)

// bundleFiles lists what goes into a job archive, run files first.
func bundleFiles(dir, job, bibtex string) ([]string, error) {
	files := []string{bibtex, filepath.Join(dir, ConfigFile), filepath.Join(dir, job+".a3m")}
	for _, pattern := range []string{job + "_unrelaxed_*", job + "_relaxed_*"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		sort.Strings(m)
		files = append(files, m...)
	}
	return files, nil
}

// Bundle zips the artifacts of a job into <job>.result.zip and removes the
// bundled job files. The run-level bibtex and config stay in place.
func Bundle(dir, job, bibtex string) (string, error) {
	files, err := bundleFiles(dir, job, bibtex)
	if err != nil {
		return "", err
	}
	dst := BundlePath(dir, job)
	tmp := dst + ".tmp"
	if err := writeZip(tmp, files); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", err
	}
	for _, f := range files[2:] {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return dst, err
		}
	}
	return dst, nil
}

func writeZip(path string, files []string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)
	for _, f := range files {
		if err := addFile(zw, f); err != nil {
			zw.Close()
			out.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func addFile(zw *zip.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	fi, err := in.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(fi)
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(path)
	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
