// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package httpcache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/respcache/internal/cache"
)

// maxBodyBytes bounds how much of a request body is read to build an
// identifier.
const maxBodyBytes = 1 << 20

// Rule configures how requests to one handler are cached.
type Rule struct {
	// Expires is the TTL expression for entries, "10m" when empty.
	Expires string
	// Category scopes entries to a subdirectory of the cache root.
	Category string
	// Exclusions lists, per HTTP method, parameter names left out of the
	// identifier (tracking ids, nonces and the like).
	Exclusions map[string][]string
}

// HandlerFunc is an http.HandlerFunc that also receives the request's cache
// entry.
type HandlerFunc func(http.ResponseWriter, *http.Request, *cache.Entry)

// Interceptor builds cache entries for requests according to a Rule.
type Interceptor struct {
	store    *cache.Store
	rule     Rule
	excluded map[string]map[string]struct{}
}

type ctxKey struct{}

// replayBody re-serves the bytes already consumed from a request body
// followed by whatever is left of it.
type replayBody struct {
	io.Reader
	io.Closer
}

// New validates rule against store and returns an Interceptor.
func New(store *cache.Store, rule Rule) (*Interceptor, error) {
	if store == nil {
		return nil, fmt.Errorf("httpcache: nil store")
	}
	if _, err := store.Dir(rule.Category); err != nil {
		return nil, fmt.Errorf("httpcache: %w", err)
	}
	if rule.Expires == "" {
		rule.Expires = cache.DefaultExpires
	}

	excluded := make(map[string]map[string]struct{}, len(rule.Exclusions))
	for method, names := range rule.Exclusions {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		excluded[strings.ToUpper(method)] = set
	}

	return &Interceptor{store: store, rule: rule, excluded: excluded}, nil
}

// Identifier returns "<path>:<name=value>:..." for r. Parameters come from the
// query string for GET and HEAD and from the top-level fields of a JSON body
// for POST, PUT and PATCH. They are sorted by name and exclusions for the
// request method are dropped. The body is left readable for the next handler.
func (i *Interceptor) Identifier(r *http.Request) (string, error) {
	params, err := i.params(r)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(params))
	for name := range params {
		if _, skip := i.excluded[r.Method][name]; skip {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+params[name])
	}

	return r.URL.Path + ":" + strings.Join(parts, ":"), nil
}

// Entry identifies the cache entry for r and applies the rule's expiry.
func (i *Interceptor) Entry(r *http.Request) (*cache.Entry, error) {
	id, err := i.Identifier(r)
	if err != nil {
		return nil, err
	}

	e, err := i.store.Identify(id, i.rule.Category)
	if err != nil {
		return nil, err
	}
	log.Debugf("cache entry for %s %s: %s", r.Method, id, e.Path())
	return e.Expires(i.rule.Expires), nil
}

// Wrap adapts fn into an http.Handler that passes the request's cache entry
// as an argument.
func (i *Interceptor) Wrap(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e, ok := i.entryOrFail(w, r)
		if !ok {
			return
		}
		fn(w, r, e)
	})
}

// Middleware stores the request's cache entry in the request context, where
// FromContext finds it.
func (i *Interceptor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e, ok := i.entryOrFail(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), e)))
	})
}

// NewContext returns a copy of ctx carrying e.
func NewContext(ctx context.Context, e *cache.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, e)
}

// FromContext returns the cache entry stored by Middleware.
func FromContext(ctx context.Context) (*cache.Entry, bool) {
	e, ok := ctx.Value(ctxKey{}).(*cache.Entry)
	return e, ok && e != nil
}

func (i *Interceptor) entryOrFail(w http.ResponseWriter, r *http.Request) (*cache.Entry, bool) {
	e, err := i.Entry(r)
	if err != nil {
		log.WithError(err).Errorf("failed to identify cache entry for %s %s", r.Method, r.URL.Path)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}
	return e, true
}

func (i *Interceptor) params(r *http.Request) (map[string]string, error) {
	params := map[string]string{}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		for name, values := range r.URL.Query() {
			params[name] = strings.Join(values, ",")
		}

	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if r.Body == nil {
			return params, nil
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		r.Body = replayBody{io.MultiReader(bytes.NewReader(body), r.Body), r.Body}

		// Anything but a JSON object contributes no parameters.
		if !gjson.ValidBytes(body) {
			return params, nil
		}
		doc := gjson.ParseBytes(body)
		if !doc.IsObject() {
			return params, nil
		}
		doc.ForEach(func(key, value gjson.Result) bool {
			if value.Type == gjson.String {
				params[key.String()] = value.String()
			} else {
				params[key.String()] = value.Raw
			}
			return true
		})
	}

	return params, nil
}
