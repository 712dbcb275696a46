package serialization

import (
	"fmt"
	"reflect"
	"time"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/job"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

const module = "serialization"

// Tuple layout. Arguments follow the header; orchestrations append their history last.
const (
	fieldID = iota
	fieldType
	fieldParentID
	fieldParentIndex
	fieldStatus
	fieldResult
	fieldError
	fieldCreateTime
	fieldLastUpdated
	headerLen
)

// Resolver looks up a descriptor by type tag. *job.Registry satisfies it.
type Resolver interface {
	Resolve(name string) (job.Descriptor, model.JobKind, error)
}

// StateCodec converts job states to and from bytes.
type StateCodec struct {
	codec    Codec
	resolver Resolver
}

// NewStateCodec creates a StateCodec over codec, resolving types through resolver.
func NewStateCodec(codec Codec, resolver Resolver) *StateCodec {
	return &StateCodec{codec: codec, resolver: resolver}
}

// CodecName returns the underlying wire codec's name.
func (c *StateCodec) CodecName() string {
	return c.codec.Name()
}

// Encode serializes the persistent fields of st. Runtime-only fields are not written.
func (c *StateCodec) Encode(st *model.JobState) ([]byte, error) {
	tuple := make([]any, 0, headerLen+len(st.Arguments)+1)
	tuple = append(tuple,
		st.ID.String(),
		st.Type,
		optionalID(st.ParentJobID),
		st.ParentHistoryIndex,
		string(st.Status),
		st.Result,
		st.Error,
		st.CreateTime.UTC(),
		st.LastUpdated.UTC(),
	)
	tuple = append(tuple, st.Arguments...)
	if st.IsOrchestration() {
		history := make([]any, len(st.History))
		for i, e := range st.History {
			history[i] = []any{e.ChildJobID.String(), e.ChildType, string(e.Status), e.Result}
		}
		tuple = append(tuple, history)
	}

	data, err := c.codec.Marshal(tuple)
	if err != nil {
		logger.Errorf("Failed to encode job %s (%s): %v", st.ID, st.Type, err)
		return nil, exception.NewDurableErrorf(module, "failed to encode job %s", st.ID, err)
	}
	return data, nil
}

// Decode reads the type tag first, resolves its descriptor, then decodes every positional
// element with the type the descriptor declares for it.
func (c *StateCodec) Decode(data []byte) (*model.JobState, error) {
	elems, err := c.codec.SplitArray(data)
	if err != nil {
		return nil, exception.NewDurableError(module, "job state is not an encoded tuple", err)
	}
	if len(elems) < headerLen {
		return nil, exception.NewDurableErrorf(module, "job state tuple has %d elements, want at least %d", len(elems), headerLen)
	}

	var jobType string
	if err := c.codec.Unmarshal(elems[fieldType], &jobType); err != nil {
		return nil, exception.NewDurableError(module, "failed to decode job type tag", err)
	}
	desc, kind, err := c.resolver.Resolve(jobType)
	if err != nil {
		return nil, exception.NewDurableErrorf(module, "cannot decode job of type %q", jobType, err)
	}

	argTypes := desc.ArgumentTypes()
	want := headerLen + len(argTypes)
	if kind == model.KindOrchestration {
		want++
	}
	if len(elems) != want {
		return nil, exception.NewDurableErrorf(module, "job of type %q has %d tuple elements, want %d", jobType, len(elems), want)
	}

	st := &model.JobState{Type: jobType, Kind: kind}
	if st.ID, err = c.decodeID(elems[fieldID]); err != nil {
		return nil, err
	}
	if !c.codec.IsNull(elems[fieldParentID]) {
		parent, err := c.decodeID(elems[fieldParentID])
		if err != nil {
			return nil, err
		}
		st.ParentJobID = &parent
	}
	if !c.codec.IsNull(elems[fieldParentIndex]) {
		var idx int
		if err := c.codec.Unmarshal(elems[fieldParentIndex], &idx); err != nil {
			return nil, exception.NewDurableError(module, "failed to decode parent history index", err)
		}
		st.ParentHistoryIndex = &idx
	}
	var status string
	if err := c.codec.Unmarshal(elems[fieldStatus], &status); err != nil {
		return nil, exception.NewDurableError(module, "failed to decode status", err)
	}
	st.Status = model.JobStatus(status)
	// Only a completed job carries a result; the others keep a plain nil.
	if st.Status == model.JobStatusCompleted {
		if st.Result, err = c.decodeValue(elems[fieldResult], desc.ResultType()); err != nil {
			return nil, exception.NewDurableErrorf(module, "failed to decode result of job %s", st.ID, err)
		}
	}
	if err := c.codec.Unmarshal(elems[fieldError], &st.Error); err != nil {
		return nil, exception.NewDurableError(module, "failed to decode error", err)
	}
	if st.CreateTime, err = c.decodeTime(elems[fieldCreateTime]); err != nil {
		return nil, err
	}
	if st.LastUpdated, err = c.decodeTime(elems[fieldLastUpdated]); err != nil {
		return nil, err
	}

	st.Arguments = make([]any, len(argTypes))
	for i, t := range argTypes {
		v, err := c.decodeValue(elems[headerLen+i], t)
		if err != nil {
			return nil, exception.NewDurableErrorf(module, "failed to decode argument %d of job %s as %s", i, st.ID, t, err)
		}
		st.Arguments[i] = v
	}

	if kind == model.KindOrchestration {
		if st.History, err = c.decodeHistory(elems[len(elems)-1]); err != nil {
			return nil, exception.NewDurableErrorf(module, "failed to decode history of job %s", st.ID, err)
		}
	}
	return st, nil
}

func (c *StateCodec) decodeHistory(data []byte) ([]model.HistoryEntry, error) {
	if c.codec.IsNull(data) {
		return nil, nil
	}
	raws, err := c.codec.SplitArray(data)
	if err != nil {
		return nil, err
	}
	var history []model.HistoryEntry
	for i, raw := range raws {
		fields, err := c.codec.SplitArray(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("entry %d has %d fields, want 4", i, len(fields))
		}
		var entry model.HistoryEntry
		if entry.ChildJobID, err = c.decodeID(fields[0]); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		var status string
		if err := c.codec.Unmarshal(fields[1], &entry.ChildType); err != nil {
			return nil, fmt.Errorf("entry %d child type: %w", i, err)
		}
		if err := c.codec.Unmarshal(fields[2], &status); err != nil {
			return nil, fmt.Errorf("entry %d status: %w", i, err)
		}
		entry.Status = model.HistoryStatus(status)

		switch entry.Status {
		case model.HistoryCompleted:
			child, _, err := c.resolver.Resolve(entry.ChildType)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			entry.Result, err = c.decodeValue(fields[3], child.ResultType())
			if err != nil {
				return nil, fmt.Errorf("entry %d result: %w", i, err)
			}
		case model.HistoryFailed:
			entry.Result, err = c.decodeValue(fields[3], reflect.TypeOf(""))
			if err != nil {
				return nil, fmt.Errorf("entry %d failure: %w", i, err)
			}
		}
		history = append(history, entry)
	}
	return history, nil
}

// decodeValue decodes data into a fresh value of type t. Null decodes to the typed nil
// of a slice, map, pointer, chan or func type and to nil otherwise.
func (c *StateCodec) decodeValue(data []byte, t reflect.Type) (any, error) {
	if t == nil {
		t = job.TypeOf[any]()
	}
	if c.codec.IsNull(data) {
		switch t.Kind() {
		case reflect.Slice, reflect.Map, reflect.Ptr, reflect.Chan, reflect.Func:
			return reflect.Zero(t).Interface(), nil
		}
		return nil, nil
	}
	ptr := reflect.New(t)
	if err := c.codec.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

func (c *StateCodec) decodeID(data []byte) (model.JobID, error) {
	var s string
	if err := c.codec.Unmarshal(data, &s); err != nil {
		return model.NilJobID, exception.NewDurableError(module, "failed to decode job id", err)
	}
	id, err := model.ParseJobID(s)
	if err != nil {
		return model.NilJobID, exception.NewDurableError(module, "failed to decode job id", err)
	}
	return id, nil
}

func (c *StateCodec) decodeTime(data []byte) (time.Time, error) {
	var t time.Time
	if c.codec.IsNull(data) {
		return t, nil
	}
	if err := c.codec.Unmarshal(data, &t); err != nil {
		return t, exception.NewDurableError(module, "failed to decode timestamp", err)
	}
	return t, nil
}

func optionalID(id *model.JobID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
