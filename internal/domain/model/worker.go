package model

import (
	"errors"
	"strings"
)

// ClaimRequest binds the external worker's own identifier to a pending job
// and drives the pending -> processing transition.
type ClaimRequest struct {
	ExternalJobID string `json:"externalJobId"`
}

// Validate checks the claim payload.
func (r *ClaimRequest) Validate() error {
	if strings.TrimSpace(r.ExternalJobID) == "" {
		return errors.New("externalJobId is required")
	}
	return nil
}

// ProgressEvent is an asynchronous worker callback reporting execution
// progress. Coarse events carry only NodeID and State ("executing node X");
// fine-grained events also carry Value/Max.
type ProgressEvent struct {
	ExternalJobID string `json:"externalJobId"`
	NodeID        string `json:"nodeId"`
	DisplayNodeID string `json:"displayNodeId,omitempty"`
	ProgressValue int    `json:"progressValue"`
	ProgressMax   int    `json:"progressMax"`
	State         string `json:"state,omitempty"`
}

// Percentage computes the integer completion percentage, guarding a zero max.
func (e *ProgressEvent) Percentage() int {
	if e.ProgressMax <= 0 {
		return 0
	}
	pct := e.ProgressValue * 100 / e.ProgressMax
	if pct > 100 {
		pct = 100
	}
	return pct
}

// CompletionEvent is the worker's success callback.
type CompletionEvent struct {
	ExternalJobID string   `json:"externalJobId"`
	ResultRefs    []string `json:"resultReference"`
}

// FailureEvent is the worker's failure callback. ErrorType is the worker's
// raw error type string, normalized by the failure classifier before any
// retry decision.
type FailureEvent struct {
	ExternalJobID string `json:"externalJobId"`
	ErrorType     string `json:"errorType"`
	ErrorMessage  string `json:"errorMessage"`
}

func validateExternalJobID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("externalJobId is required")
	}
	return nil
}

// Validate checks the progress payload.
func (e *ProgressEvent) Validate() error { return validateExternalJobID(e.ExternalJobID) }

// Validate checks the completion payload.
func (e *CompletionEvent) Validate() error { return validateExternalJobID(e.ExternalJobID) }

// Validate checks the failure payload.
func (e *FailureEvent) Validate() error { return validateExternalJobID(e.ExternalJobID) }
