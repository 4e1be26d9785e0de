package controller

import (
	"errors"

	"github.com/hengxingtx/ragnews-cli/internal/knowledge"
)

// Sentinel errors checked with errors.Is().
var (
	// ErrNoSelection indicates an operation that needs a selected
	// knowledge base was attempted without one.
	ErrNoSelection = errors.New("no knowledge base selected")

	// ErrNotInList indicates a selection target that is not in the
	// current knowledge base list.
	ErrNotInList = errors.New("knowledge base not in current list")

	// ErrNotConfirmed indicates a destructive operation was attempted
	// without user confirmation.
	ErrNotConfirmed = errors.New("destructive action not confirmed")
)

// Confirmation attests that the user approved a destructive action.
// It is a required argument to the delete intents, decoupling the
// controller's contract from any particular confirmation UI. The zero
// value does not grant anything; only Confirm() does.
type Confirmation struct {
	granted bool
}

// Confirm returns a granted confirmation. Call it only after the user
// actually approved the action.
func Confirm() Confirmation {
	return Confirmation{granted: true}
}

// Granted reports whether the confirmation was given.
func (c Confirmation) Granted() bool {
	return c.granted
}

// Request tags. Each carries the identity of the state the operation was
// issued against, so completions can detect that the world moved on.
type (
	// FilesFetch tags an in-flight file listing with the base it targets.
	FilesFetch struct {
		BaseID int64
	}

	// BaseCreate tags an in-flight knowledge base creation.
	BaseCreate struct{}

	// BaseDelete tags an in-flight knowledge base deletion.
	BaseDelete struct {
		BaseID int64
	}

	// Upload tags an in-flight file upload.
	Upload struct {
		BaseID int64
	}

	// FileDelete tags an in-flight file deletion.
	FileDelete struct {
		BaseID int64
		FileID int64
	}
)

// Controller is the state machine over the three owned collections.
//
// Not safe for concurrent use: all methods must be called from the same
// event-loop thread. Network responses arriving on other goroutines must
// be marshaled onto that thread before being applied (Bubble Tea does
// this by construction).
type Controller struct {
	bases    []knowledge.Base
	selected *knowledge.Base // copy of the selected entry, nil when none
	files    []knowledge.File
	inflight int // mutating operations currently in flight
}

// New creates an empty controller.
func New() *Controller {
	return &Controller{}
}

// Bases returns the knowledge base list in server order.
func (c *Controller) Bases() []knowledge.Base {
	return c.bases
}

// Selected returns the selected knowledge base, if any.
func (c *Controller) Selected() (knowledge.Base, bool) {
	if c.selected == nil {
		return knowledge.Base{}, false
	}
	return *c.selected, true
}

// Files returns the files of the selected knowledge base. Empty when
// nothing is selected.
func (c *Controller) Files() []knowledge.File {
	return c.files
}

// Busy reports whether any mutating operation is in flight. Overlapping
// operations are permitted; Busy stays true until the last one completes.
func (c *Controller) Busy() bool {
	return c.inflight > 0
}

// ApplyBases replaces the knowledge base list wholesale with a fresh
// server listing. Server order is preserved; nothing is merged.
//
// The membership invariant is restored in the same call: if the selected
// base no longer appears in the new list (deleted elsewhere), selection
// and files are cleared together so no render can show a dangling
// selection. If it does appear, the selected copy is refreshed so
// server-computed fields (file_count, updated_at) are current.
func (c *Controller) ApplyBases(bases []knowledge.Base) {
	c.bases = bases

	if c.selected == nil {
		return
	}
	for i := range bases {
		if bases[i].ID == c.selected.ID {
			fresh := bases[i]
			c.selected = &fresh
			return
		}
	}
	c.selected = nil
	c.files = nil
}

// Select marks the base with the given id as selected and returns the tag
// for the file listing the caller must now issue. The base must be in the
// current list. The previous files stay visible until the tagged listing
// is applied; a listing for a previously selected base dies at ApplyFiles.
func (c *Controller) Select(id int64) (FilesFetch, error) {
	for i := range c.bases {
		if c.bases[i].ID == id {
			picked := c.bases[i]
			c.selected = &picked
			return FilesFetch{BaseID: id}, nil
		}
	}
	return FilesFetch{}, ErrNotInList
}

// ClearSelection drops the selection and its files together.
func (c *Controller) ClearSelection() {
	c.selected = nil
	c.files = nil
}

// ApplyFiles replaces the file collection with the result of the tagged
// fetch — but only if the tag still matches the current selection. A
// response for a base the user has since navigated away from is discarded,
// which is what guarantees the most recently initiated selection wins
// regardless of response arrival order.
func (c *Controller) ApplyFiles(fetch FilesFetch, files []knowledge.File) bool {
	if c.selected == nil || c.selected.ID != fetch.BaseID {
		return false
	}
	c.files = files
	return true
}

// StartCreate registers an in-flight knowledge base creation.
// Name validation belongs to the input surface, not here.
func (c *Controller) StartCreate() BaseCreate {
	c.inflight++
	return BaseCreate{}
}

// FinishCreate records the outcome of a creation. It returns true when
// the caller must refetch the knowledge base list — exactly once per
// success, never on failure. Nothing was inserted optimistically, so a
// failure leaves prior state untouched.
func (c *Controller) FinishCreate(_ BaseCreate, err error) (refreshBases bool) {
	c.inflight--
	return err == nil
}

// StartDeleteBase registers an in-flight deletion of the selected
// knowledge base. It requires a granted confirmation and a selection.
func (c *Controller) StartDeleteBase(confirm Confirmation) (BaseDelete, error) {
	if !confirm.Granted() {
		return BaseDelete{}, ErrNotConfirmed
	}
	if c.selected == nil {
		return BaseDelete{}, ErrNoSelection
	}
	c.inflight++
	return BaseDelete{BaseID: c.selected.ID}, nil
}

// FinishDeleteBase records the outcome of a base deletion. On success the
// selection and its files are cleared in this same call — atomically with
// respect to the view — and the caller must refetch the list. On failure
// nothing changes and no refresh is issued.
func (c *Controller) FinishDeleteBase(del BaseDelete, err error) (refreshBases bool) {
	c.inflight--
	if err != nil {
		return false
	}
	if c.selected != nil && c.selected.ID == del.BaseID {
		c.selected = nil
		c.files = nil
	}
	return true
}

// StartUpload registers an in-flight upload to the selected base. The
// returned tag pins the target base id for the entire flight.
func (c *Controller) StartUpload() (Upload, error) {
	if c.selected == nil {
		return Upload{}, ErrNoSelection
	}
	c.inflight++
	return Upload{BaseID: c.selected.ID}, nil
}

// FinishUpload records the outcome of an upload. On success it returns
// the files refresh to issue — unless the user switched bases while the
// upload was in flight, in which case the refresh is discarded: the files
// view belongs to the new selection, not the upload target.
func (c *Controller) FinishUpload(up Upload, err error) (FilesFetch, bool) {
	c.inflight--
	if err != nil {
		return FilesFetch{}, false
	}
	if c.selected == nil || c.selected.ID != up.BaseID {
		return FilesFetch{}, false
	}
	return FilesFetch{BaseID: up.BaseID}, true
}

// StartDeleteFile registers an in-flight deletion of one file in the
// selected base. Requires a granted confirmation.
func (c *Controller) StartDeleteFile(fileID int64, confirm Confirmation) (FileDelete, error) {
	if !confirm.Granted() {
		return FileDelete{}, ErrNotConfirmed
	}
	if c.selected == nil {
		return FileDelete{}, ErrNoSelection
	}
	c.inflight++
	return FileDelete{BaseID: c.selected.ID, FileID: fileID}, nil
}

// FinishDeleteFile records the outcome of a file deletion, under the same
// staleness guard as FinishUpload. A failed deletion (including a
// 404-class rejection for a file already gone) changes nothing locally.
func (c *Controller) FinishDeleteFile(del FileDelete, err error) (FilesFetch, bool) {
	c.inflight--
	if err != nil {
		return FilesFetch{}, false
	}
	if c.selected == nil || c.selected.ID != del.BaseID {
		return FilesFetch{}, false
	}
	return FilesFetch{BaseID: del.BaseID}, true
}
