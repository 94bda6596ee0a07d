package entities

import "fmt"

// ErrorCode is a machine-readable failure identifier shared with UI consumers.
type ErrorCode string

const (
	ErrorCodeUnknown               ErrorCode = "unknown-error"
	ErrorCodeChapterNotFound       ErrorCode = "chapter-not-found"
	ErrorCodeChapterLoadFailed     ErrorCode = "chapter-load-failed"
	ErrorCodeTargetFailed          ErrorCode = "entity-load-failed"
	ErrorCodeEntityPartiallyFailed ErrorCode = "some-assets-not-found"
	ErrorCodeAssetLoadFailed       ErrorCode = "asset-load-failed"
	ErrorCodeTimeout               ErrorCode = "timeout"
	ErrorCodeSceneUpdateFailed     ErrorCode = "failed-to-update-scene"
)

// ErrorType tells listeners how loudly an error should be surfaced.
type ErrorType string

const (
	ErrorTypeCritical ErrorType = "critical"
	ErrorTypeWarning  ErrorType = "warning"
	ErrorTypeInfo     ErrorType = "info"
)

// ErrorInfo describes a failure attached to a resource node or pushed on the
// error channel. Details carries the errors of the failing descendants.
type ErrorInfo struct {
	Code    ErrorCode   `json:"code" yaml:"code"`
	Msg     string      `json:"msg" yaml:"msg"`
	Type    ErrorType   `json:"type,omitempty" yaml:"type,omitempty"`
	Source  string      `json:"source,omitempty" yaml:"source,omitempty"`
	Details []ErrorInfo `json:"details,omitempty" yaml:"details,omitempty"`
}

func (e *ErrorInfo) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Msg, e.Source)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Sources lists the node ids referenced by the error's details, falling back
// to the error's own source when it has no details.
func (e *ErrorInfo) Sources() []string {
	if e == nil {
		return nil
	}
	if len(e.Details) == 0 {
		if e.Source == "" {
			return nil
		}
		return []string{e.Source}
	}
	out := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		if d.Source != "" {
			out = append(out, d.Source)
		}
	}
	return out
}

func collectErrors(failed []*Asset) []ErrorInfo {
	out := make([]ErrorInfo, 0, len(failed))
	for _, a := range failed {
		if a.Error != nil {
			out = append(out, *a.Error)
			continue
		}
		out = append(out, ErrorInfo{Code: ErrorCodeAssetLoadFailed, Msg: "failed to load asset", Source: a.ID})
	}
	return out
}

// EntityFailure builds the error recorded on an entity whose assets failed.
func EntityFailure(entityID string, failed []*Asset) *ErrorInfo {
	return &ErrorInfo{
		Code:    ErrorCodeEntityPartiallyFailed,
		Msg:     fmt.Sprintf("failed to load %d assets", len(failed)),
		Source:  entityID,
		Details: collectErrors(failed),
	}
}

// TargetFailure builds the error recorded on a target whose entity failed.
func TargetFailure(targetID string, entityErr *ErrorInfo) *ErrorInfo {
	info := &ErrorInfo{
		Code:   ErrorCodeTargetFailed,
		Msg:    "entity failed to load due to asset errors",
		Source: targetID,
	}
	if entityErr != nil {
		info.Details = append([]ErrorInfo(nil), entityErr.Details...)
	}
	return info
}

// ChapterFailure builds the aggregate error recorded on a failed chapter.
func ChapterFailure(chapterID string, errs []ErrorInfo) *ErrorInfo {
	return &ErrorInfo{
		Code:    ErrorCodeChapterLoadFailed,
		Msg:     fmt.Sprintf("chapter failed to load with %d errors", len(errs)),
		Type:    ErrorTypeWarning,
		Source:  chapterID,
		Details: errs,
	}
}
