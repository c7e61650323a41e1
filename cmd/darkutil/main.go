package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	raven "github.com/getsentry/raven-go"

	"github.com/ndlib/darkarchive/config"
	"github.com/ndlib/darkarchive/errcode"
	"github.com/ndlib/darkarchive/premis"
	"github.com/ndlib/darkarchive/records"
	"github.com/ndlib/darkarchive/transfer"
)

const version = "1.0.0"

var (
	configFile = flag.String("config", "", "settings file")
	usage      = `
darkutil <command> <command arguments>

Possible commands:
    record <id list>

    highest <source directory>

    fixity <id> <archived file>
`
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(int(errcode.InvalidArguments))
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		exit(err)
	}
	if err := cfg.SetupSentry(); err != nil {
		fmt.Println("sentry:", err)
	}
	s, err := cfg.OpenStore()
	if err != nil {
		exit(err)
	}
	defer s.Close()

	switch {
	case args[0] == "record" && len(args) > 1:
		err = dorecord(s, cfg, args[1:])
	case args[0] == "highest" && len(args) == 2:
		err = dohighest(s, args[1])
	case args[0] == "fixity" && len(args) == 3:
		err = dofixity(s, cfg, args[1], args[2])
	default:
		flag.Usage()
		s.Close()
		os.Exit(int(errcode.InvalidArguments))
	}
	if err != nil {
		s.Close()
		exit(err)
	}
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, err)
	raven.CaptureErrorAndWait(err, nil)
	if e, ok := err.(*errcode.Error); ok {
		os.Exit(int(e.Code))
	}
	os.Exit(1)
}

func dorecord(s records.Store, cfg config.Config, ids []string) error {
	codec, err := cfg.LoadCodec()
	if err != nil {
		return err
	}
	for _, id := range ids {
		doc, err := s.FindByID(id)
		if err != nil {
			fmt.Printf("%s: Error %s\n", id, err.Error())
			continue
		}
		rec, err := codec.Decode(doc.Value)
		if err != nil {
			fmt.Printf("%s: Error %s\n", id, err.Error())
			continue
		}
		printrecord(doc, rec)
		printjson(os.Stdout, doc.Value)
	}
	return nil
}

// printjson writes data indented, or as stored if it cannot be indented.
func printjson(w io.Writer, data []byte) {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		w.Write(data)
	} else {
		out.WriteTo(w)
	}
	fmt.Fprintln(w)
}

func printrecord(doc *records.Document, rec *premis.Record) {
	obj := rec.Preservation.Object
	fmt.Println("Record:", rec.ID)
	w := tabwriter.NewWriter(os.Stdout, 5, 1, 3, ' ', 0)
	fmt.Fprintf(w, "OriginalName:\t%s\n", obj.OriginalName)
	fmt.Fprintf(w, "Serial:\t%s\n", rec.Admin.SerialNumber)
	fmt.Fprintf(w, "Created:\t%v\n", doc.Created)
	fmt.Fprintf(w, "Size:\t%d\n", obj.Size)
	fmt.Fprintf(w, "Format:\t%s %s\n", obj.FormatName, obj.FormatVersion)
	fmt.Fprintf(w, "%s:\t%s\n", obj.Fixity.Algorithm, obj.Fixity.Digest)
	for k, v := range rec.Admin.Arrangement {
		fmt.Fprintf(w, "%s:\t%s\n", k, v)
	}
	w.Flush()
	fmt.Println("---")
	for _, e := range rec.Preservation.Events {
		fmt.Printf("%s  %-26s %s\n", e.Timestamp(), e.Type, e.Outcome)
	}
	fmt.Println("---")
}

func dohighest(s records.Store, dir string) error {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	n, err := transfer.HighestSerial(s, dir)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func dofixity(s records.Store, cfg config.Config, id, fname string) error {
	codec, err := cfg.LoadCodec()
	if err != nil {
		return err
	}
	events := premis.NewEventBuilder("darkutil", version)
	ok, err := transfer.Reverify(s, codec, events, id, fname)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("%s: fixity check failed for %s\n", id, fname)
		s.Close()
		os.Exit(1)
	}
	fmt.Printf("%s: ok\n", id)
	return nil
}
