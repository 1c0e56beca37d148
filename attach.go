package poegate

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// ValidateAttachment checks existence and size before any upstream call is
// made. Failures abort the request with a FileHandlingError.
func ValidateAttachment(path string, maxBytes int64) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileHandlingError{Path: path, Err: fmt.Errorf("file not found")}
		}
		return &FileHandlingError{Path: path, Err: err}
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return &FileHandlingError{Path: path, Err: fmt.Errorf(
			"size %.2fMB exceeds limit %.2fMB",
			float64(info.Size())/(1<<20), float64(maxBytes)/(1<<20))}
	}
	return nil
}

// attachPrompt appends attachment content to a prompt. Content that decodes
// as valid UTF-8 is inlined under a "File content:" marker; anything else
// is noted as an opaque attachment by filename. No structured binary
// parsing is attempted.
func attachPrompt(prompt, path string, maxBytes int64) (string, error) {
	if err := ValidateAttachment(path, maxBytes); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &FileHandlingError{Path: path, Err: err}
	}
	if utf8.Valid(data) {
		return prompt + "\n\nFile content:\n" + string(data), nil
	}
	return prompt + "\n\n[File attached: " + filepath.Base(path) + "]", nil
}
