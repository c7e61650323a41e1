package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	raven "github.com/getsentry/raven-go"

	"github.com/ndlib/darkarchive/batch"
	"github.com/ndlib/darkarchive/config"
	"github.com/ndlib/darkarchive/errcode"
	"github.com/ndlib/darkarchive/premis"
	"github.com/ndlib/darkarchive/transfer"
	"github.com/ndlib/darkarchive/util"
)

const version = "1.0.0"

var (
	batchFile  = flag.String("f", "", "CSV file listing the directories to transfer")
	extension  = flag.String("e", "", "extension of the files to transfer; * for every file")
	move       = flag.Bool("m", false, "move files instead of copying them")
	quiet      = flag.Bool("q", false, "only print errors")
	configFile = flag.String("config", "", "settings file")
	usage      = `
accession [options] SRC DST
accession [options] -f <batch file>

Copies (or with -m moves) the files in SRC into DST, naming each one by a
new unique id, and records its provenance in the database. A destination
which already exists continues where an earlier run stopped.

Only one accession should run against a source directory at a time.

Options:
`
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	os.Exit(int(run(flag.Args())))
}

// run does the work and returns the process exit status.
func run(args []string) errcode.Code {
	logger := util.NewLogger(*quiet)
	if (*batchFile == "" && len(args) != 2) || (*batchFile != "" && len(args) != 0) {
		flag.Usage()
		return errcode.InvalidArguments
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fatal(logger, err)
	}
	if err := cfg.SetupSentry(); err != nil {
		logger.Errorf("sentry: %s", err)
	}
	if *extension != "" {
		cfg.Extension = *extension
	}

	codec, err := cfg.LoadCodec()
	if err != nil {
		return fatal(logger, err)
	}
	table := &batch.Table{Header: []string{"source", "destination"}}
	if *batchFile != "" {
		f, err := os.Open(*batchFile)
		if err != nil {
			logger.Errorf("Could not open CSV file '%s'", *batchFile)
			return fatal(logger, errcode.Fatal(errcode.CannotOpenCSV, err))
		}
		table, err = batch.ReadRows(f, codec.Labels.SerialNumber)
		f.Close()
		if err != nil {
			return fatal(logger, err)
		}
		for _, fail := range table.Invalid {
			logger.Errorf("Row %v in %s is not a valid input. This row will not be processed.", fail.Row.Fields, *batchFile)
		}
	} else {
		table.Rows = []batch.Row{batch.NewRow(args[0], args[1])}
	}

	store, err := cfg.OpenStore()
	if err != nil {
		return fatal(logger, err)
	}
	defer store.Close()

	engine := &transfer.Engine{
		Config: transfer.Config{
			Extension: cfg.Extension,
			Move:      *move,
			Algorithm: cfg.DigestAlgorithm(),
		},
		Store:  store,
		Codec:  codec,
		Events: premis.NewEventBuilder("accession", version),
		Log:    logger,
	}
	driver := &batch.Driver{Engine: engine, Log: logger}
	failures, runErr := driver.Run(table.Rows)
	failures = append(table.Invalid, failures...)

	// the report is written even when a fatal error stopped the run
	fname, err := batch.WriteReport(".", table.Header, failures, time.Now())
	if err != nil {
		logger.Errorf("%s", err)
		if runErr == nil {
			return fatal(logger, err)
		}
	} else if fname != "" {
		logger.Errorf("Not all transfers were successful. A record of rows for which errors were encountered has been written to the following file: %s", fname)
	}
	if runErr != nil {
		// already logged and sent to Sentry
		return exitCode(runErr)
	}
	return 0
}

// fatal logs err, sends it to Sentry, and returns its exit status.
func fatal(logger *util.Logger, err error) errcode.Code {
	code := exitCode(err)
	logger.Errorf("%s", err)
	raven.CaptureErrorAndWait(err, map[string]string{"code": code.String()})
	return code
}

func exitCode(err error) errcode.Code {
	var e *errcode.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return errcode.InvalidArguments
}
