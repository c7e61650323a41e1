package premis

import (
	"io"
	"os"

	"github.com/antonholmquist/jason"
	"github.com/pkg/errors"
)

// Labels are the key names used for each part of a record when it is
// stored. The struct tags give the symbolic name under which each label is
// found in the label dictionary file.
type Labels struct {
	AdminEntity  string `label:"admn_entity"`
	Arrangement  string `label:"arrangement"`
	SerialNumber string `label:"serial_nbr"`

	PresEntity        string `label:"pres_entity"`
	ObjEntity         string `label:"obj_entity"`
	ObjID             string `label:"obj_id"`
	ObjIDType         string `label:"obj_id_typ"`
	ObjIDValue        string `label:"obj_id_val"`
	ObjCategory       string `label:"obj_cat"`
	ObjChars          string `label:"obj_chars"`
	ObjFixity         string `label:"obj_fixity"`
	ObjDigestAlgo     string `label:"obj_msgdgst_algo"`
	ObjDigest         string `label:"obj_msgdgst"`
	ObjSize           string `label:"obj_size"`
	ObjFormat         string `label:"obj_fmt"`
	ObjFormatDesig    string `label:"obj_fmt_dsgn"`
	ObjFormatName     string `label:"obj_fmt_name"`
	ObjFormatVersion  string `label:"obj_fmt_ver"`
	ObjOriginalName   string `label:"obj_orig_name"`
	EventParentEntity string `label:"evt_parent_entity"`

	EventEntity       string `label:"evt_entity"`
	EventID           string `label:"evt_id"`
	EventIDType       string `label:"evt_id_typ"`
	EventIDValue      string `label:"evt_id_val"`
	EventType         string `label:"evt_typ"`
	EventDateTime     string `label:"evt_dttime"`
	EventDetailParent string `label:"evt_detail_parent"`
	EventDetailInfo   string `label:"evt_detail_info"`
	EventDetailExt    string `label:"evt_detail_ext"`
	EventOutcomeInfo  string `label:"evt_outcm_info"`
	EventOutcome      string `label:"evt_outcm"`
	EventAgentID      string `label:"evt_lnk_agnt_id"`
	EventAgentIDType  string `label:"evt_lnk_agnt_id_typ"`
	EventAgentIDValue string `label:"evt_lnk_agnt_id_val"`

	DetailAlgorithm   string `label:"evt_detail_algo"`
	DetailLanguage    string `label:"evt_detail_proglang"`
	DetailMethod      string `label:"evt_detail_mthd"`
	DetailAssignedID  string `label:"evt_detail_idAssgn"`
	DetailDigest      string `label:"evt_detail_msgDgst"`
	DetailSource      string `label:"evt_detail_src"`
	DetailDestination string `label:"evt_detail_dst"`
	DetailBefore      string `label:"evt_detail_before"`
	DetailAfter       string `label:"evt_detail_after"`
	DetailExtracted   string `label:"evt_detail_metadataExtraction"`
}

// fields pairs each symbolic label name with the struct field holding it.
// It is kept in sync with the struct tags above by TestLabelFieldsCoverTags.
func (l *Labels) fields() []labelField {
	return []labelField{
		{"admn_entity", &l.AdminEntity},
		{"arrangement", &l.Arrangement},
		{"serial_nbr", &l.SerialNumber},
		{"pres_entity", &l.PresEntity},
		{"obj_entity", &l.ObjEntity},
		{"obj_id", &l.ObjID},
		{"obj_id_typ", &l.ObjIDType},
		{"obj_id_val", &l.ObjIDValue},
		{"obj_cat", &l.ObjCategory},
		{"obj_chars", &l.ObjChars},
		{"obj_fixity", &l.ObjFixity},
		{"obj_msgdgst_algo", &l.ObjDigestAlgo},
		{"obj_msgdgst", &l.ObjDigest},
		{"obj_size", &l.ObjSize},
		{"obj_fmt", &l.ObjFormat},
		{"obj_fmt_dsgn", &l.ObjFormatDesig},
		{"obj_fmt_name", &l.ObjFormatName},
		{"obj_fmt_ver", &l.ObjFormatVersion},
		{"obj_orig_name", &l.ObjOriginalName},
		{"evt_parent_entity", &l.EventParentEntity},
		{"evt_entity", &l.EventEntity},
		{"evt_id", &l.EventID},
		{"evt_id_typ", &l.EventIDType},
		{"evt_id_val", &l.EventIDValue},
		{"evt_typ", &l.EventType},
		{"evt_dttime", &l.EventDateTime},
		{"evt_detail_parent", &l.EventDetailParent},
		{"evt_detail_info", &l.EventDetailInfo},
		{"evt_detail_ext", &l.EventDetailExt},
		{"evt_outcm_info", &l.EventOutcomeInfo},
		{"evt_outcm", &l.EventOutcome},
		{"evt_lnk_agnt_id", &l.EventAgentID},
		{"evt_lnk_agnt_id_typ", &l.EventAgentIDType},
		{"evt_lnk_agnt_id_val", &l.EventAgentIDValue},
		{"evt_detail_algo", &l.DetailAlgorithm},
		{"evt_detail_proglang", &l.DetailLanguage},
		{"evt_detail_mthd", &l.DetailMethod},
		{"evt_detail_idAssgn", &l.DetailAssignedID},
		{"evt_detail_msgDgst", &l.DetailDigest},
		{"evt_detail_src", &l.DetailSource},
		{"evt_detail_dst", &l.DetailDestination},
		{"evt_detail_before", &l.DetailBefore},
		{"evt_detail_after", &l.DetailAfter},
		{"evt_detail_metadataExtraction", &l.DetailExtracted},
	}
}

type labelField struct {
	name string
	dst  *string
}

// Detail returns the label for a detail key.
func (l *Labels) Detail(k DetailKey) string {
	switch k {
	case DetailAlgorithm:
		return l.DetailAlgorithm
	case DetailLanguage:
		return l.DetailLanguage
	case DetailMethod:
		return l.DetailMethod
	case DetailAssignedID:
		return l.DetailAssignedID
	case DetailDigest:
		return l.DetailDigest
	case DetailSource:
		return l.DetailSource
	case DetailDestination:
		return l.DetailDestination
	case DetailBefore:
		return l.DetailBefore
	case DetailAfter:
		return l.DetailAfter
	case DetailExtracted:
		return l.DetailExtracted
	}
	return ""
}

// Vocabulary holds the controlled terms written for object categories,
// event types and event outcomes.
type Vocabulary struct {
	ObjectCategory string
	EventTypes     map[EventType]string
	Outcomes       map[Outcome]string
}

// the symbolic names of event types in the vocabulary file
var eventTypeTerms = []struct {
	name string
	t    EventType
}{
	{"idAssgn", IdentifierAssignment},
	{"msgDgstCalc", MessageDigestCalculation},
	{"replication", Replication},
	{"migration", Migration},
	{"filenameChg", FilenameChange},
	{"fixityChk", FixityCheck},
	{"accession", Accession},
	{"metadataExt", MetadataExtraction},
	{"metadataMod", MetadataModification},
}

// A ConfigError is returned when a label dictionary or vocabulary file is
// readable but does not hold valid content.
type ConfigError struct {
	File string
	Err  error
}

func (e *ConfigError) Error() string {
	return e.File + ": " + e.Err.Error()
}

// LoadLabels reads a label dictionary file. A label may be given either as
// a string or as an object with a "name" member:
//
//	{"admn_entity": {"name": "adminMetadata"}, "arrangement": "arrangement", ...}
//
// Every label is required. An error opening the file is returned as is; bad
// content is reported as a *ConfigError.
func LoadLabels(fname string) (*Labels, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	labels, err := ReadLabels(f)
	if err != nil {
		return nil, &ConfigError{File: fname, Err: err}
	}
	return labels, nil
}

// ReadLabels parses a label dictionary from r.
func ReadLabels(r io.Reader) (*Labels, error) {
	obj, err := jason.NewObjectFromReader(r)
	if err != nil {
		return nil, err
	}
	labels := new(Labels)
	for _, field := range labels.fields() {
		v, err := obj.GetString(field.name, "name")
		if err != nil {
			v, err = obj.GetString(field.name)
		}
		if err != nil || v == "" {
			return nil, errors.Errorf("missing label %s", field.name)
		}
		*field.dst = v
	}
	return labels, nil
}

// LoadVocabulary reads a controlled vocabulary file, which looks like
//
//	{"objCat": "file",
//	 "evtTyp": {"idAssgn": "identifier assignment", ...},
//	 "evtOutcm": {"success": "success", "failure": "failure"}}
//
// Every term is required.
func LoadVocabulary(fname string) (*Vocabulary, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vocab, err := ReadVocabulary(f)
	if err != nil {
		return nil, &ConfigError{File: fname, Err: err}
	}
	return vocab, nil
}

// ReadVocabulary parses a controlled vocabulary from r.
func ReadVocabulary(r io.Reader) (*Vocabulary, error) {
	obj, err := jason.NewObjectFromReader(r)
	if err != nil {
		return nil, err
	}
	vocab := &Vocabulary{
		EventTypes: make(map[EventType]string),
		Outcomes:   make(map[Outcome]string),
	}
	vocab.ObjectCategory, err = obj.GetString("objCat")
	if err != nil {
		return nil, errors.Wrap(err, "objCat")
	}
	for _, term := range eventTypeTerms {
		v, err := obj.GetString("evtTyp", term.name)
		if err != nil {
			return nil, errors.Wrap(err, "evtTyp."+term.name)
		}
		vocab.EventTypes[term.t] = v
	}
	for name, o := range map[string]Outcome{"success": Success, "failure": Failure} {
		v, err := obj.GetString("evtOutcm", name)
		if err != nil {
			return nil, errors.Wrap(err, "evtOutcm."+name)
		}
		vocab.Outcomes[o] = v
	}
	return vocab, nil
}
