// internal/errors/constructors.go
package errors

// Convenience constructors for the error taxonomy.

func ConfigMissingKey(path, key string) *Error {
	return &Error{Category: CategoryConfig, Message: "required key " + quote(key) + " missing", Path: path}
}

func ConfigUnreadable(path string, cause error) *Error {
	return &Error{Category: CategoryConfig, Message: "cannot read config file", Path: path, Cause: cause}
}

func MalformedHeader(line int, text string) *Error {
	return &Error{Category: CategoryParse, Message: "malformed metadata line " + quote(text) + ", expected \"Key: Value\"", Line: line}
}

func TemplateNotFound(name string) *Error {
	return &Error{Category: CategoryTemplate, Message: "template " + quote(name) + " not found"}
}

func TemplateFailed(name string, cause error) *Error {
	return &Error{Category: CategoryTemplate, Message: "rendering " + quote(name) + " failed", Cause: cause}
}

func IO(op, path string, cause error) *Error {
	return &Error{Category: CategoryIO, Message: op, Path: path, Cause: cause}
}

func Watch(path string, cause error) *Error {
	return &Error{Category: CategoryWatch, Message: "cannot watch source tree", Path: path, Cause: cause}
}

func quote(s string) string {
	return "\"" + s + "\""
}
