package premis

import (
	"encoding/json"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/pkg/errors"
)

// DocumentIDKey is the key holding the record ID at the top level of every
// stored document.
const DocumentIDKey = "_id"

// A Codec converts records to and from the labeled documents kept in the
// database.
type Codec struct {
	Labels *Labels
	Vocab  *Vocabulary
}

// Document returns the record as a nested map whose keys are taken from the
// label dictionary.
func (c Codec) Document(r *Record) map[string]interface{} {
	l := c.Labels
	arrangement := make(map[string]interface{}, len(r.Admin.Arrangement)+1)
	for k, v := range r.Admin.Arrangement {
		arrangement[k] = v
	}
	arrangement[l.SerialNumber] = r.Admin.SerialNumber

	return map[string]interface{}{
		DocumentIDKey: r.ID,
		l.AdminEntity: map[string]interface{}{
			l.Arrangement: arrangement,
		},
		l.PresEntity: c.preservation(&r.Preservation),
	}
}

func (c Codec) preservation(p *Preservation) map[string]interface{} {
	l := c.Labels
	obj := &p.Object
	category := obj.Category
	if category == ObjectCategory && c.Vocab.ObjectCategory != "" {
		category = c.Vocab.ObjectCategory
	}
	events := make([]interface{}, 0, len(p.Events))
	for i := range p.Events {
		events = append(events, c.event(&p.Events[i]))
	}
	return map[string]interface{}{
		l.ObjEntity: map[string]interface{}{
			l.ObjID: map[string]interface{}{
				l.ObjIDType:  obj.IDType,
				l.ObjIDValue: obj.IDValue,
			},
			l.ObjCategory: category,
			l.ObjChars: map[string]interface{}{
				l.ObjFixity: map[string]interface{}{
					l.ObjDigestAlgo: obj.Fixity.Algorithm,
					l.ObjDigest:     obj.Fixity.Digest,
				},
				l.ObjSize: obj.Size,
				l.ObjFormat: map[string]interface{}{
					l.ObjFormatDesig: map[string]interface{}{
						l.ObjFormatName:    obj.FormatName,
						l.ObjFormatVersion: obj.FormatVersion,
					},
				},
			},
			l.ObjOriginalName: obj.OriginalName,
		},
		l.EventParentEntity: events,
	}
}

func (c Codec) event(e *Event) map[string]interface{} {
	l := c.Labels
	body := map[string]interface{}{
		l.EventID: map[string]interface{}{
			l.EventIDType:  IDType,
			l.EventIDValue: e.ID,
		},
		l.EventType:     c.Vocab.EventTypes[e.Type],
		l.EventDateTime: e.Timestamp(),
		l.EventOutcomeInfo: map[string]interface{}{
			l.EventOutcome: c.Vocab.Outcomes[e.Outcome],
		},
		l.EventAgentID: map[string]interface{}{
			l.EventAgentIDType:  e.Agent.Type,
			l.EventAgentIDValue: e.Agent.Value,
		},
	}
	if len(e.Detail) > 0 {
		ext := make(map[string]interface{}, len(e.Detail))
		for _, k := range detailKeys {
			if v, ok := e.Detail[k]; ok {
				ext[l.Detail(k)] = v
			}
		}
		body[l.EventDetailParent] = []interface{}{
			map[string]interface{}{
				l.EventDetailInfo: map[string]interface{}{
					l.EventDetailExt: ext,
				},
			},
		}
	}
	return map[string]interface{}{l.EventEntity: body}
}

// AppendEvent returns the fields to merge into the stored document data so
// that it gains event e. The events already stored are carried over as they
// are, including any this codec does not understand.
func (c Codec) AppendEvent(data []byte, e *Event) (map[string]interface{}, error) {
	l := c.Labels
	doc, err := jason.NewObjectFromBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode record")
	}
	stored, err := doc.GetValueArray(l.PresEntity, l.EventParentEntity)
	if err != nil {
		return nil, errors.Wrap(err, "decode events")
	}
	events := make([]interface{}, 0, len(stored)+1)
	for _, v := range stored {
		events = append(events, v.Interface())
	}
	events = append(events, c.event(e))
	return map[string]interface{}{
		l.PresEntity: map[string]interface{}{
			l.EventParentEntity: events,
		},
	}, nil
}

// Marshal returns the JSON encoding of the record's document.
func (c Codec) Marshal(r *Record) ([]byte, error) {
	return json.Marshal(c.Document(r))
}

// Decode rebuilds a record from the JSON encoding of its document.
func (c Codec) Decode(data []byte) (*Record, error) {
	l := c.Labels
	doc, err := jason.NewObjectFromBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode record")
	}
	r := new(Record)
	if r.ID, err = doc.GetString(DocumentIDKey); err != nil {
		return nil, errors.Wrap(err, "decode record id")
	}

	arr, err := doc.GetObject(l.AdminEntity, l.Arrangement)
	if err != nil {
		return nil, errors.Wrap(err, "decode arrangement")
	}
	r.Admin.Arrangement = make(map[string]string)
	for k, v := range arr.Map() {
		s, err := v.String()
		if err != nil {
			continue
		}
		if k == l.SerialNumber {
			r.Admin.SerialNumber = s
			continue
		}
		r.Admin.Arrangement[k] = s
	}
	// older records store the serial number as a number
	if n, err := arr.GetInt64(l.SerialNumber); err == nil {
		r.SetSerial(int(n))
	}

	obj, err := doc.GetObject(l.PresEntity, l.ObjEntity)
	if err != nil {
		return nil, errors.Wrap(err, "decode object")
	}
	o := &r.Preservation.Object
	o.IDType, _ = obj.GetString(l.ObjID, l.ObjIDType)
	o.IDValue, _ = obj.GetString(l.ObjID, l.ObjIDValue)
	o.Category, _ = obj.GetString(l.ObjCategory)
	if o.Category == c.Vocab.ObjectCategory {
		o.Category = ObjectCategory
	}
	o.Fixity.Algorithm, _ = obj.GetString(l.ObjChars, l.ObjFixity, l.ObjDigestAlgo)
	o.Fixity.Digest, _ = obj.GetString(l.ObjChars, l.ObjFixity, l.ObjDigest)
	o.Size, _ = obj.GetInt64(l.ObjChars, l.ObjSize)
	o.FormatName, _ = obj.GetString(l.ObjChars, l.ObjFormat, l.ObjFormatDesig, l.ObjFormatName)
	o.FormatVersion, _ = obj.GetString(l.ObjChars, l.ObjFormat, l.ObjFormatDesig, l.ObjFormatVersion)
	o.OriginalName, _ = obj.GetString(l.ObjOriginalName)

	events, err := doc.GetObjectArray(l.PresEntity, l.EventParentEntity)
	if err != nil {
		return nil, errors.Wrap(err, "decode events")
	}
	r.Preservation.Events = make([]Event, 0, len(events))
	for i, ev := range events {
		e, err := c.decodeEvent(ev)
		if err != nil {
			return nil, errors.Wrapf(err, "decode event %d", i)
		}
		r.Preservation.Events = append(r.Preservation.Events, e)
	}
	return r, nil
}

func (c Codec) decodeEvent(obj *jason.Object) (Event, error) {
	l := c.Labels
	var e Event
	body, err := obj.GetObject(l.EventEntity)
	if err != nil {
		return e, err
	}
	e.ID, _ = body.GetString(l.EventID, l.EventIDValue)
	term, _ := body.GetString(l.EventType)
	for t, v := range c.Vocab.EventTypes {
		if v == term {
			e.Type = t
			break
		}
	}
	stamp, err := body.GetString(l.EventDateTime)
	if err != nil {
		return e, err
	}
	if e.Time, err = time.Parse(TimeLayout, stamp); err != nil {
		return e, err
	}
	outcome, _ := body.GetString(l.EventOutcomeInfo, l.EventOutcome)
	if outcome == c.Vocab.Outcomes[Failure] {
		e.Outcome = Failure
	}
	e.Agent.Type, _ = body.GetString(l.EventAgentID, l.EventAgentIDType)
	e.Agent.Value, _ = body.GetString(l.EventAgentID, l.EventAgentIDValue)

	details, err := body.GetObjectArray(l.EventDetailParent)
	if err != nil {
		// events such as accession carry no detail
		return e, nil
	}
	e.Detail = make(map[DetailKey]string)
	for _, d := range details {
		ext, err := d.GetObject(l.EventDetailInfo, l.EventDetailExt)
		if err != nil {
			continue
		}
		for _, k := range detailKeys {
			if v, err := ext.GetString(l.Detail(k)); err == nil {
				e.Detail[k] = v
			}
		}
	}
	return e, nil
}
