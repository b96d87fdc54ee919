package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/a-poor/bluesst/storage"
)

// errAbsent is returned by get when at least one key was not found.
var errAbsent = errors.New("key not found")

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// write stores each line of the input, newline included, under its
// zero-based line number.
func (e *env) write(args []string) error {
	fs := newFlagSet("write")
	dir := fs.String("dir", "", "Table directory (default: a new directory under table.root)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: write takes at most one file", errUsage)
	}

	// Pick the input
	in := e.stdin
	if fs.NArg() == 1 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	// Stage the lines
	m := storage.NewMemtable(e.cfg.Table.MemtableMaxEntries)
	r := bufio.NewReader(in)
	for n := 0; ; n++ {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			if perr := m.Put(strconv.Itoa(n), line); perr != nil {
				return fmt.Errorf("line %d: %w", n+1, perr)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}

	// Pick the table directory
	if *dir == "" {
		d, err := storage.CreateTableDir(e.cfg.Table.Root)
		if err != nil {
			return err
		}
		*dir = d
	}

	table, err := m.Flush(*dir, e.opts)
	if err != nil {
		return err
	}

	e.log.Info().
		Str("dir", table.Dir()).
		Int("keys", table.Len()).
		Msg("wrote sstable")
	fmt.Fprintln(e.stdout, table.Dir())
	return nil
}

// get prints the value of each key, in order.
func (e *env) get(args []string) error {
	fs := newFlagSet("get")
	dir := fs.String("dir", "", "Table directory")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *dir == "" || fs.NArg() == 0 {
		return fmt.Errorf("%w: get needs --dir and at least one key", errUsage)
	}

	table, err := storage.ReadSSTable(*dir, e.opts)
	if err != nil {
		return err
	}

	var missing int
	for _, k := range fs.Args() {
		v, ok, err := table.Get(k)
		if err != nil {
			return err
		}
		if !ok {
			e.log.Warn().Str("key", k).Msg("key not found")
			missing++
			continue
		}
		fmt.Fprint(e.stdout, v)
	}

	if missing > 0 {
		return fmt.Errorf("%w: %d of %d keys", errAbsent, missing, fs.NArg())
	}
	return nil
}

// keys lists the table's keys, one per line, in ascending order.
func (e *env) keys(args []string) error {
	fs := newFlagSet("keys")
	dir := fs.String("dir", "", "Table directory")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *dir == "" || fs.NArg() != 0 {
		return fmt.Errorf("%w: keys needs --dir and no arguments", errUsage)
	}

	table, err := storage.ReadSSTable(*dir, e.opts)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(e.stdout)
	for _, k := range table.Keys() {
		fmt.Fprintln(w, k)
	}
	return w.Flush()
}
