// Package fasta holds the small slice of FASTA handling the pipeline
// needs: listing record ids and writing exclusion-filtered subsets used
// as carry-forward inputs between stages.
package fasta

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// ID extracts the record id from a header line: the first
// whitespace-delimited token after '>'.
func ID(header string) string {
	h := strings.TrimPrefix(header, ">")
	if i := strings.IndexAny(h, " \t"); i >= 0 {
		h = h[:i]
	}
	return strings.TrimSpace(h)
}

// IDs scans a FASTA file and returns its record ids in file order.
func IDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fasta: open %s", path)
	}
	defer f.Close()

	var ids []string
	sc := newLineScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ">") {
			ids = append(ids, ID(line))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "fasta: scan %s", path)
	}
	return ids, nil
}

// Count returns the number of records in a FASTA file.
func Count(path string) (int, error) {
	ids, err := IDs(path)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// WriteSubset copies records from in to out, keeping or dropping the
// records whose id is in ids. With exclude true (the carry-forward case)
// records in ids are dropped; otherwise only they are kept. Returns the
// number of records written.
func WriteSubset(in, out string, ids map[string]struct{}, exclude bool) (int, error) {
	src, err := os.Open(in)
	if err != nil {
		return 0, eris.Wrapf(err, "fasta: open %s", in)
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return 0, eris.Wrapf(err, "fasta: create %s", out)
	}
	defer dst.Close()

	w := bufio.NewWriter(dst)
	written := 0
	keep := false

	sc := newLineScanner(src)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ">") {
			_, listed := ids[ID(line)]
			keep = listed != exclude
			if keep {
				written++
			}
		}
		if keep {
			if _, err := w.WriteString(line); err != nil {
				return written, eris.Wrapf(err, "fasta: write %s", out)
			}
			if err := w.WriteByte('\n'); err != nil {
				return written, eris.Wrapf(err, "fasta: write %s", out)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return written, eris.Wrapf(err, "fasta: scan %s", in)
	}
	if err := w.Flush(); err != nil {
		return written, eris.Wrapf(err, "fasta: flush %s", out)
	}
	return written, nil
}

// newLineScanner returns a scanner with a buffer large enough for long
// unwrapped sequence lines. bufio.ScanLines already strips trailing CR.
func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return sc
}
