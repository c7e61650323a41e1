// Package config reads the darkarchive.toml settings file and opens the
// resources it names. The accession and darkutil commands share it.
//
// A settings file looks like
//
//	[database]
//	driver = "mysql"
//	dial = "user:password@tcp(localhost:3306)/archive"
//	collection = "records"
//
//	labels = "/etc/darkarchive/labels.json"
//	vocabulary = "/etc/darkarchive/vocab.json"
//	algorithm = "MD5"
//	extension = "tif"
//	sentry_dsn = ""
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	raven "github.com/getsentry/raven-go"
	"github.com/pkg/errors"

	"github.com/ndlib/darkarchive/errcode"
	"github.com/ndlib/darkarchive/premis"
	"github.com/ndlib/darkarchive/records"
	"github.com/ndlib/darkarchive/util"
)

// Config holds the settings of a run.
type Config struct {
	Database   Database
	Labels     string
	Vocabulary string
	Algorithm  string
	Extension  string
	SentryDSN  string `toml:"sentry_dsn"`
}

// Database says where records are kept. Driver is "mysql" or "ql". For ql
// the dial string is a file name, or "memory".
type Database struct {
	Driver     string
	Dial       string
	Collection string
}

// Default returns the settings used for anything the file leaves out.
func Default() Config {
	return Config{
		Database: Database{
			Driver:     "ql",
			Dial:       "darkarchive.db",
			Collection: records.DefaultCollection,
		},
		Labels:     "labels.json",
		Vocabulary: "vocab.json",
		Algorithm:  string(util.MD5),
		Extension:  "tif",
	}
}

// Load reads a settings file on top of the defaults. An empty name returns
// the defaults. Any problem is an errcode.CannotReadDBConfig error.
func Load(fname string) (Config, error) {
	c := Default()
	if fname == "" {
		return c, nil
	}
	if _, err := toml.DecodeFile(fname, &c); err != nil {
		return c, errcode.Fatal(errcode.CannotReadDBConfig, errors.Wrap(err, fname))
	}
	if _, err := util.ParseAlgorithm(c.Algorithm); err != nil {
		return c, errcode.Fatal(errcode.CannotReadDBConfig, errors.Wrap(err, fname))
	}
	return c, nil
}

// SetupSentry points error capture at the configured DSN. Nothing is sent
// when the DSN is empty.
func (c Config) SetupSentry() error {
	if c.SentryDSN == "" {
		return nil
	}
	return raven.SetDSN(c.SentryDSN)
}

// OpenStore connects to the record store. Connection failures are
// errcode.CannotConnectDB errors, except for rejected credentials which are
// errcode.CannotAuthenticateDB.
func (c Config) OpenStore() (records.Store, error) {
	db := c.Database
	switch db.Driver {
	case "mysql":
		s, err := records.NewMysqlStore(db.Dial, db.Collection)
		if records.IsAuthError(err) {
			return nil, errcode.Fatal(errcode.CannotAuthenticateDB, err)
		} else if err != nil {
			return nil, errcode.Fatal(errcode.CannotConnectDB, err)
		}
		return s, nil
	case "ql", "":
		s, err := records.NewQlStore(db.Dial, db.Collection)
		if err != nil {
			return nil, errcode.Fatal(errcode.CannotConnectDB, err)
		}
		return s, nil
	}
	return nil, errcode.Fatal(errcode.CannotReadDBConfig, errors.Errorf("unknown database driver %q", db.Driver))
}

// LoadCodec reads the label dictionary and the vocabulary.
func (c Config) LoadCodec() (premis.Codec, error) {
	var codec premis.Codec
	labels, err := premis.LoadLabels(c.Labels)
	if err != nil {
		return codec, classify(err, errcode.CannotReadLabels, errcode.InvalidLabels)
	}
	vocab, err := premis.LoadVocabulary(c.Vocabulary)
	if err != nil {
		return codec, classify(err, errcode.CannotReadVocab, errcode.InvalidVocab)
	}
	codec.Labels = labels
	codec.Vocab = vocab
	return codec, nil
}

// DigestAlgorithm returns the configured checksum algorithm.
func (c Config) DigestAlgorithm() util.Algorithm {
	a, err := util.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return util.MD5
	}
	return a
}

func classify(err error, unreadable, invalid errcode.Code) error {
	var cerr *premis.ConfigError
	if errors.As(err, &cerr) {
		return errcode.Fatal(invalid, err)
	}
	if _, ok := err.(*os.PathError); ok || os.IsNotExist(err) {
		return errcode.Fatal(unreadable, err)
	}
	return errcode.Fatal(invalid, err)
}
