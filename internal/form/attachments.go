package form

import (
	"dms-go/internal/model"
)

// attachments tracks which existing files a draft keeps and which new files
// it adds. retained is always a subset of seed, in seed order.
type attachments struct {
	seed     []model.FileAttachment
	retained []model.FileAttachment
	pending  []model.Upload
}

func (a *attachments) reset(files []model.FileAttachment) {
	a.seed = append([]model.FileAttachment(nil), files...)
	a.retained = append([]model.FileAttachment(nil), files...)
	a.pending = nil
}

func (a *attachments) add(check func(model.Upload) *FieldError, files []model.Upload) error {
	var errs ValidationErrors
	for _, u := range files {
		if fe := check(u); fe != nil {
			errs = append(errs, *fe)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	a.pending = append(a.pending, files...)
	return nil
}

func (a *attachments) detach(id int64) error {
	for i, f := range a.retained {
		if f.ID == id {
			a.retained = append(a.retained[:i:i], a.retained[i+1:]...)
			return nil
		}
	}
	return ErrUnknownAttachment
}

func (a *attachments) dropPending(index int) error {
	if index < 0 || index >= len(a.pending) {
		return ErrUnknownAttachment
	}
	a.pending = append(a.pending[:index:index], a.pending[index+1:]...)
	return nil
}

// changed compares retained ids with the seed as sets; any pending file
// counts as a change.
func (a *attachments) changed() bool {
	if len(a.pending) > 0 {
		return true
	}
	if len(a.retained) != len(a.seed) {
		return true
	}
	kept := make(map[int64]bool, len(a.retained))
	for _, f := range a.retained {
		kept[f.ID] = true
	}
	for _, f := range a.seed {
		if !kept[f.ID] {
			return true
		}
	}
	return false
}

func (a *attachments) check(check func(model.Upload) *FieldError) ValidationErrors {
	var errs ValidationErrors
	for _, u := range a.pending {
		if fe := check(u); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

// retainedIDs never returns nil so the request encodes an empty list as [].
func (a *attachments) retainedIDs() []int64 {
	ids := make([]int64, 0, len(a.retained))
	for _, f := range a.retained {
		ids = append(ids, f.ID)
	}
	return ids
}

func (a *attachments) retainedCopy() []model.FileAttachment {
	return append([]model.FileAttachment{}, a.retained...)
}

func (a *attachments) pendingCopy() []model.Upload {
	return append([]model.Upload{}, a.pending...)
}
