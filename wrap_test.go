package tryhttp

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID int
}

// markedValue is a client failure that is not an error.
type markedValue struct {
	marked bool
	res    *Response
	req    *http.Request
}

func (m markedValue) IsClientError() bool            { return m.marked }
func (m markedValue) AttachedResponse() *Response    { return m.res }
func (m markedValue) AttachedRequest() *http.Request { return m.req }

func TestWrapSuccess(t *testing.T) {
	want := &Result[payload]{Data: payload{ID: 1}, Status: http.StatusOK}

	got, err := Wrap(func() (*Result[payload], error) {
		return want, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestWrapCallsOperationOnce(t *testing.T) {
	calls := 0
	_, _ = Wrap(func() (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	assert.Equal(t, 1, calls)
}

func TestWrapFailure(t *testing.T) { // nolint: funlen
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	transportErr := errors.New("connection refused")
	plain := errors.New("boom")
	notFound := 404

	testCases := []struct {
		name       string
		fn         func() (*Result[payload], error)
		wantType   Kind
		wantData   any
		wantStatus *int
		wantCause  error
	}{
		{
			name: "Response",
			fn: func() (*Result[payload], error) {
				return nil, &ClientError{
					Request:  req,
					Response: &Response{Data: "not found", Status: 404},
					Err:      ErrStatus,
				}
			},
			wantType:   KindResponse,
			wantData:   "not found",
			wantStatus: &notFound,
			wantCause:  ErrStatus,
		},
		{
			name: "WrappedResponse",
			fn: func() (*Result[payload], error) {
				return nil, fmt.Errorf("fetching user: %w", &ClientError{
					Response: &Response{Data: map[string]any{"message": "missing"}, Status: 404},
				})
			},
			wantType:   KindResponse,
			wantData:   map[string]any{"message": "missing"},
			wantStatus: &notFound,
		},
		{
			name: "Request",
			fn: func() (*Result[payload], error) {
				return nil, &ClientError{Request: req, Err: transportErr}
			},
			wantType:  KindRequest,
			wantCause: transportErr,
		},
		{
			name: "MarkedWithoutAttachments",
			fn: func() (*Result[payload], error) {
				return nil, &ClientError{Err: transportErr}
			},
			wantType:  KindError,
			wantData:  "connection refused",
			wantCause: transportErr,
		},
		{
			name: "Error",
			fn: func() (*Result[payload], error) {
				return nil, plain
			},
			wantType:  KindError,
			wantData:  "boom",
			wantCause: plain,
		},
		{
			name: "PanicError",
			fn: func() (*Result[payload], error) {
				panic(plain)
			},
			wantType:  KindError,
			wantData:  "boom",
			wantCause: plain,
		},
		{
			name: "PanicString",
			fn: func() (*Result[payload], error) {
				panic("oops")
			},
			wantType: KindDefault,
			wantData: "oops",
		},
		{
			name: "PanicNumber",
			fn: func() (*Result[payload], error) {
				panic(42)
			},
			wantType: KindDefault,
			wantData: 42,
		},
		{
			name: "PanicMarkedValue",
			fn: func() (*Result[payload], error) {
				panic(markedValue{marked: true, res: &Response{Data: "not found", Status: 404}})
			},
			wantType:   KindResponse,
			wantData:   "not found",
			wantStatus: &notFound,
		},
		{
			name: "PanicUnmarkedValue",
			fn: func() (*Result[payload], error) {
				panic(markedValue{res: &Response{Data: "not found", Status: 404}})
			},
			wantType: KindDefault,
			wantData: markedValue{res: &Response{Data: "not found", Status: 404}},
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			res, err := Wrap(tc.fn)
			assert.Nil(t, res)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.wantType, e.Type)
			assert.Equal(t, tc.wantData, e.Data)
			assert.Equal(t, tc.wantStatus, e.Status)
			if tc.wantCause != nil {
				assert.ErrorIs(t, err, tc.wantCause)
			}
		})
	}
}

func TestClassifyDefault(t *testing.T) {
	testCases := []struct {
		name string
		v    any
	}{
		{"Nil", nil},
		{"String", "oops"},
		{"Map", map[string]any{"a": 1}},
		{"Struct", payload{ID: 7}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			e := Classify(tc.v)
			assert.Equal(t, KindDefault, e.Type)
			assert.Equal(t, tc.v, e.Data)
			assert.Nil(t, e.Status)
			assert.Nil(t, e.Unwrap())
		})
	}
}

func TestClassifyAllocatesPerFailure(t *testing.T) {
	cause := &ClientError{Response: &Response{Data: "x", Status: 500}}
	a, b := Classify(cause), Classify(cause)

	assert.NotSame(t, a, b)
	assert.NotSame(t, a.Status, b.Status)
}

func TestWrapConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				got, err := Wrap(func() (int, error) { return i, nil })
				assert.NoError(t, err)
				assert.Equal(t, i, got)
				return
			}
			_, err := Wrap(func() (int, error) { return 0, fmt.Errorf("call %d", i) })
			assert.ErrorIs(t, err, ErrGeneric)
			assert.EqualError(t, err, fmt.Sprintf("error error: call %d", i))
		}()
	}
	wg.Wait()
}
