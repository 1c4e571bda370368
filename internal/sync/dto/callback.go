package dto

// callbackRef is a nested payload section carrying the record id
type callbackRef struct {
	RecordID uint `json:"record_id"`
}

// CallbackPayload is the body of an asynchronous completion notice from
// the remote document API. The record id may arrive in one of three
// nested shapes, checked in priority order: doc, request, params.
type CallbackPayload struct {
	Error   bool         `json:"error"`
	Message string       `json:"message"`
	Doc     *callbackRef `json:"doc"`
	Request *callbackRef `json:"request"`
	Params  *callbackRef `json:"params"`
}

// RecordID extracts the record id from the first payload shape carrying one
func (p *CallbackPayload) RecordID() (uint, bool) {
	for _, ref := range []*callbackRef{p.Doc, p.Request, p.Params} {
		if ref != nil && ref.RecordID != 0 {
			return ref.RecordID, true
		}
	}
	return 0, false
}
