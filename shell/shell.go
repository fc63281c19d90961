// Package shell is the interactive command line of dc-progress. It ties the
// string, path, config and hashing helpers together behind a handful of
// commands with tab completion.
package shell

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/dc-progress/conf"
	"github.com/webtor-io/dc-progress/pathutil"
	"github.com/webtor-io/dc-progress/ratecalc"
	"github.com/webtor-io/dc-progress/services"
	"github.com/webtor-io/dc-progress/strutil"
)

const (
	prompt      = "dc> "
	historyName = "history"
)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

type command struct {
	name string
	args string
	help string
	path bool
	run  func(s *Shell, arg string, out io.Writer) error
}

var commands []*command

func init() {
	commands = []*command{
		{name: "b32", args: "<hex>", help: "Encode a 24 byte hex hash as base32.", run: (*Shell).b32},
		{name: "check", args: "<charset>", help: "Check that a charset can be used.", run: (*Shell).check},
		{name: "convert", args: "<charset> <text>", help: "Convert UTF-8 text to a charset.", run: (*Shell).convert},
		{name: "expand", args: "<path>", help: "Resolve a path.", path: true, run: (*Shell).expand},
		{name: "get", args: "<key>", help: "Show a setting.", run: (*Shell).get},
		{name: "hash", args: "<path>", help: "Hash a file.", path: true, run: (*Shell).hash},
		{name: "help", help: "List commands.", run: (*Shell).help},
		{name: "quit", help: "Leave the shell.", run: (*Shell).quit},
		{name: "set", args: "<key> [<value>]", help: "Change a setting, or reset it without a value.", run: (*Shell).set},
		{name: "size", args: "<bytes>", help: "Format a byte count.", run: (*Shell).size},
		{name: "unb32", args: "<base32>", help: "Decode a base32 hash to hex.", run: (*Shell).unb32},
		{name: "width", args: "<text>", help: "Count terminal columns.", run: (*Shell).width},
	}
}

func findCommand(name string) *command {
	for _, c := range commands {
		if c.name == name {
			return c
		}
	}
	return nil
}

type Shell struct {
	conf   *conf.Conf
	hasher *services.Hasher
	reg    *ratecalc.Registry
}

func New(c *conf.Conf, reg *ratecalc.Registry) *Shell {
	return &Shell{
		conf:   c,
		hasher: services.NewHasher(reg),
		reg:    reg,
	}
}

// Exec runs one command line.
func (s *Shell) Exec(line string, out io.Writer) error {
	name, arg, err := strutil.Arg2Split(line)
	if err != nil {
		return err
	}
	if name == "" {
		return nil
	}
	c := findCommand(name)
	if c == nil {
		return errors.Errorf("Unknown command %v", name)
	}
	return c.run(s, arg, out)
}

// Complete returns the full lines line may be completed to.
func (s *Shell) Complete(line string) []string {
	name, arg, err := strutil.Arg2Split(line)
	if err != nil {
		return nil
	}
	if !strings.Contains(line, " ") {
		var res []string
		for _, c := range commands {
			if strutil.CaseStr(c.name, name) == 0 {
				res = append(res, c.name+" ")
			}
		}
		return res
	}
	c := findCommand(name)
	if c == nil || !c.path {
		return nil
	}
	p, err := strutil.ShellUnquotePrefix(arg)
	if err != nil {
		return nil
	}
	sug := pathutil.Suggest(p)
	for i := range sug {
		sug[i] = strutil.ShellEscape(sug[i])
	}
	return strutil.PrefixAll(sug, c.name, " ")
}

// Run reads commands from the terminal until quit or EOF.
func (s *Shell) Run() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(s.Complete)

	history := filepath.Join(s.conf.Dir(), historyName)
	if f, err := os.Open(history); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		f, err := os.OpenFile(history, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			log.WithError(err).Warn("Failed to save history")
			return
		}
		defer f.Close()
		line.WriteHistory(f)
	}()

	for {
		in, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "Failed to read input")
		}
		if strings.TrimSpace(in) == "" {
			continue
		}
		line.AppendHistory(in)
		err = s.Exec(in, os.Stdout)
		if err == ErrQuit {
			return nil
		}
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
		}
	}
}

func (s *Shell) help(arg string, out io.Writer) error {
	for _, c := range commands {
		fmt.Fprintf(out, "  %-8s %-18s %s\n", c.name, c.args, c.help)
	}
	return nil
}

func (s *Shell) quit(arg string, out io.Writer) error {
	return ErrQuit
}

func (s *Shell) width(arg string, out io.Writer) error {
	fmt.Fprintf(out, "%d\n", strutil.Columns(arg))
	return nil
}

func (s *Shell) convert(arg string, out io.Writer) error {
	cs, text, err := strutil.Arg2Split(arg)
	if err != nil {
		return err
	}
	if cs == "" {
		return errors.New("No charset given")
	}
	fmt.Fprintf(out, "%q\n", strutil.Convert(cs, "UTF-8", text))
	return nil
}

func (s *Shell) check(arg string, out io.Writer) error {
	if err := strutil.ConvertCheck(arg); err != nil {
		return err
	}
	fmt.Fprintf(out, "%v is usable\n", arg)
	return nil
}

func (s *Shell) b32(arg string, out io.Writer) error {
	b, err := hex.DecodeString(strings.TrimSpace(arg))
	if err != nil {
		return errors.Wrap(err, "Invalid hex")
	}
	if len(b) != strutil.HashSize {
		return errors.Errorf("Expected %d bytes, got %d", strutil.HashSize, len(b))
	}
	var h [strutil.HashSize]byte
	copy(h[:], b)
	fmt.Fprintln(out, strutil.Base32Encode(h))
	return nil
}

func (s *Shell) unb32(arg string, out io.Writer) error {
	h, err := strutil.Base32Decode(strings.TrimSpace(arg))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hex.EncodeToString(h[:]))
	return nil
}

func (s *Shell) size(arg string, out io.Writer) error {
	n, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return errors.Wrap(err, "Invalid number")
	}
	fmt.Fprintln(out, strings.TrimSpace(strutil.FormatSize(n)))
	return nil
}

func (s *Shell) expand(arg string, out io.Writer) error {
	p, _, err := strutil.Arg2Split(arg)
	if err != nil {
		return err
	}
	r, err := pathutil.Expand(p)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, r)
	return nil
}

// splitKey turns "hub.key" into its group and key; plain keys are global.
func splitKey(k string) (string, string) {
	if i := strings.LastIndexByte(k, '.'); i > 0 {
		return k[:i], k[i+1:]
	}
	return conf.GlobalGroup, k
}

func (s *Shell) get(arg string, out io.Writer) error {
	k := strings.TrimSpace(arg)
	if k == "" {
		return errors.New("No key given")
	}
	group, key := splitKey(k)
	v, ok := s.conf.HubGet(group, key)
	if !ok {
		fmt.Fprintf(out, "%v is not set\n", k)
		return nil
	}
	fmt.Fprintf(out, "%v = %v\n", k, v)
	return nil
}

func (s *Shell) set(arg string, out io.Writer) error {
	k, v, err := strutil.Arg2Split(arg)
	if err != nil {
		return err
	}
	if k == "" {
		return errors.New("No key given")
	}
	group, key := splitKey(k)
	if v == "" {
		s.conf.Unset(group, key)
		fmt.Fprintf(out, "%v reset\n", k)
	} else {
		if _, err := conf.ParseInt(v); err != nil {
			if b, err := conf.ParseBool(v); err == nil {
				v = conf.FormatBool(b)
			}
		}
		s.conf.Set(group, key, v)
		fmt.Fprintf(out, "%v = %v\n", k, v)
	}
	return s.conf.Save()
}

func (s *Shell) hash(arg string, out io.Writer) error {
	p, _, err := strutil.Arg2Split(arg)
	if err != nil {
		return err
	}
	p, err = pathutil.Expand(p)
	if err != nil {
		return err
	}
	var e ratecalc.Entity
	t := services.NewRateTickerWithClock(clock.New(), time.Second, s.reg)
	t.OnTick(func() {
		fmt.Fprintf(out, "hashing at %v/s\n", strings.TrimSpace(strutil.FormatSize(uint64(e.Get()))))
	})
	done := make(chan struct{})
	go func() {
		t.Serve()
		close(done)
	}()
	root, err := s.hasher.HashFile(context.Background(), p, &e)
	t.Close()
	<-done
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%v  %v\n", root, p)
	return nil
}
