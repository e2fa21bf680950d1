package util

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hanhanhuhmanman/drumbot-roy/constants"
	"golang.org/x/exp/constraints"
)

func RecreateDir(dir string) {
	os.RemoveAll(dir)
	os.MkdirAll(dir, 0777)
}

// GatherAllMidiPaths walks root and returns every .mid/.midi path in sorted
// order, so two scans of the same tree always agree.
func GatherAllMidiPaths(root string) []string {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if strings.HasSuffix(s, constants.MidiExt) || strings.HasSuffix(s, constants.MidiExtLong) {
				res = append(res, s)
			}
		}
		return nil
	}
	filepath.WalkDir(root, walk)
	sort.Strings(res)
	return res
}

func CreateBinary(filename string, data any) {
	buf := new(bytes.Buffer)
	encoder := gob.NewEncoder(buf)
	err := encoder.Encode(data)
	if err != nil {
		panic(err)
	}
	f, err := os.Create(filename)
	if err != nil {
		fmt.Println("Couldn't open file: "+filename, err)
	}
	defer f.Close()

	_, err = f.Write(buf.Bytes())
	if err != nil {
		fmt.Println("Write failed for file: "+filename, err)
	}
}

func ReadBinaryOrPanic[A any](path string) A {
	f, err := os.Open(path)
	if err != nil {
		panic("Could not load binary file: " + err.Error())
	}
	defer f.Close()

	var data A
	decoder := gob.NewDecoder(f)
	err = decoder.Decode(&data)
	if err != nil {
		panic("Could not decode binary file: " + err.Error())
	}

	return data
}

func Min[A constraints.Integer](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}
