// Package tryhttp runs HTTP calls and reports their failures in one shape.
//
// Wrap invokes an operation and turns whatever it fails with into an *Error
// tagged response, request, error or default. Client is a thin net/http
// client whose failures carry the attached request and response Wrap looks for.
package tryhttp
