package utils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// MakePath creates inPath and its parents. A directory that already exists is fine.
func MakePath(inPath string) error {
	if err := os.MkdirAll(inPath, 0755); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	return nil
}

// RelativeSymlink links destFile to srcFile using a path relative to destFile's directory.
// An existing link is left alone.
func RelativeSymlink(srcFile, destFile string) error {
	srcAbs, err := filepath.Abs(srcFile)
	if err != nil {
		return err
	}
	destAbs, err := filepath.Abs(destFile)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(filepath.Dir(destAbs), srcAbs)
	if err != nil {
		return err
	}
	if err := os.Symlink(rel, destAbs); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	return nil
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// PrintTime prints msg in bold with the time elapsed since start.
func PrintTime(msg string, start time.Time) {
	FprintTime(os.Stdout, msg, start)
}

func FprintTime(w io.Writer, msg string, start time.Time) {
	elapsed := time.Since(start)
	h := int(elapsed.Hours())
	m := int(elapsed.Minutes()) % 60
	s := elapsed.Seconds() - float64(h*3600+m*60)
	var strTime string
	if h > 0 {
		strTime = fmt.Sprintf("%dhr %dm %0.3fs", h, m, s)
	} else {
		strTime = fmt.Sprintf("%dm %0.3fs", m, s)
	}
	fmt.Fprintf(w, "\n\033[1m[Elapsed Time: %s] %s\033[0m\n", strTime, msg)
}
