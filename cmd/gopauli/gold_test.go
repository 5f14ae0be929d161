package main

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/go-python/gpython/py"
)

// TestGold runs every script under learn/ and captures its output under
// learn/gold/, making diffs easy to review after engine changes.
func TestGold(t *testing.T) {
	scriptDir := "learn/"
	files, err := os.ReadDir(scriptDir)
	if err != nil {
		t.Fatal(err)
	}

	goldDir := path.Join(scriptDir, "gold")
	os.MkdirAll(goldDir, 0700)

	for _, fi := range files {
		pyFile := path.Join(scriptDir, fi.Name())
		ext := filepath.Ext(pyFile)
		if ext != ".py" {
			continue
		}

		outputPathname := path.Join(goldDir, pyFile[len(scriptDir):len(pyFile)-len(ext)]+".txt")

		ctx := py.NewContext(py.DefaultContextOpts())
		redirect, err := redirectToFile(outputPathname, ctx)
		if err != nil {
			t.Fatal(err)
		}

		if _, err = py.RunFile(ctx, pyFile, py.CompileOpts{}, nil); err != nil {
			t.Fatal(err)
		}
		ctx.Close()
		<-ctx.Done()

		if err = redirect.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

type pyRedirect struct {
	file       *os.File
	prevStdout *os.File
}

func redirectToFile(outputPathname string, ctx py.Context) (io.Closer, error) {
	ofile, err := os.OpenFile(outputPathname, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}

	sys := ctx.Store().MustGetModule("sys")
	sys.Globals["stdout"] = &py.File{
		File:     ofile,
		FileMode: py.FileWrite,
	}

	redir := &pyRedirect{
		file:       ofile,
		prevStdout: os.Stdout,
	}
	os.Stdout = ofile
	return redir, nil
}

func (redir *pyRedirect) Close() error {
	if redir.prevStdout == nil {
		return nil
	}
	os.Stdout = redir.prevStdout
	err := redir.file.Close()
	redir.file = nil
	return err
}
