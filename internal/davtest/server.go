// Package davtest provides an in-memory CalDAV/CardDAV server for package
// tests: principal and home-set discovery, Depth-1 collection listings,
// calendar-query and addressbook-query REPORTs, conditional PUT and
// DELETE, and raw file storage.
package davtest

import (
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/beevik/etree"

	"github.com/tmaehler/davbox/internal/davxml"
)

// Kind distinguishes calendar collections from address books.
type Kind int

const (
	KindCalendar Kind = iota
	KindAddressbook
)

// Collection is one server-side collection and its stored objects.
type Collection struct {
	Href       string
	Name       string
	Kind       Kind
	Components []string // declared component set; nil omits the property
	Broken     bool     // REPORT requests fail with 500

	objects map[string]*object // filename -> object
}

type object struct {
	data string
	etag string
}

type file struct {
	data        []byte
	contentType string
}

// Server is the in-memory fixture. Collections are registered up front;
// objects can be seeded directly or written through the HTTP surface.
type Server struct {
	mu          sync.Mutex
	principal   string
	calHome     string
	cardHome    string
	collections []*Collection
	files       map[string]*file
}

// New builds a fixture server with the standard principal and home paths.
func New() *Server {
	return &Server{
		principal: "/principals/jdoe/",
		calHome:   "/calendars/jdoe/",
		cardHome:  "/addressbooks/jdoe/",
		files:     map[string]*file{},
	}
}

// AddCalendar registers a calendar collection. The component set lists the
// declared component types; pass none to omit the declaration entirely.
func (s *Server) AddCalendar(slug, name string, components ...string) *Collection {
	c := &Collection{
		Href:       s.calHome + slug + "/",
		Name:       name,
		Kind:       KindCalendar,
		Components: components,
		objects:    map[string]*object{},
	}
	s.collections = append(s.collections, c)
	return c
}

// AddAddressbook registers an address book collection.
func (s *Server) AddAddressbook(slug, name string) *Collection {
	c := &Collection{
		Href:    s.cardHome + slug + "/",
		Name:    name,
		Kind:    KindAddressbook,
		objects: map[string]*object{},
	}
	s.collections = append(s.collections, c)
	return c
}

// Seed stores an object in the collection and returns its etag.
func (s *Server) Seed(c *Collection, filename, body string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj := &object{data: body, etag: contentETag(body)}
	c.objects[filename] = obj
	return obj.etag
}

// ObjectBody returns the stored body of an object.
func (s *Server) ObjectBody(c *Collection, filename string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := c.objects[filename]
	if !ok {
		return "", false
	}
	return obj.data, true
}

// ObjectETag returns the stored etag of an object.
func (s *Server) ObjectETag(c *Collection, filename string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := c.objects[filename]
	if !ok {
		return "", false
	}
	return obj.etag, true
}

// ObjectCount returns the number of objects in the collection.
func (s *Server) ObjectCount(c *Collection) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(c.objects)
}

// FileBody returns a raw file stored outside the DAV collections.
func (s *Server) FileBody(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[path]
	if !ok {
		return nil, false
	}
	return f.data, true
}

// SeedFile stores a raw file.
func (s *Server) SeedFile(path string, data []byte, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = &file{data: data, contentType: contentType}
}

// Handler returns the HTTP surface of the fixture.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch r.Method {
		case "PROPFIND":
			s.handlePropfind(w, r)
		case "REPORT":
			s.handleReport(w, r)
		case http.MethodPut:
			s.handlePut(w, r)
		case http.MethodDelete:
			s.handleDelete(w, r)
		case http.MethodGet:
			s.handleGet(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
}

// locate splits a path into its collection and object filename. The second
// return is "" when the path names the collection itself.
func (s *Server) locate(path string) (*Collection, string) {
	for _, c := range s.collections {
		if path == c.Href {
			return c, ""
		}
		if strings.HasPrefix(path, c.Href) {
			rest := strings.TrimPrefix(path, c.Href)
			if rest != "" && !strings.Contains(rest, "/") {
				return c, rest
			}
		}
	}
	return nil, ""
}

func (s *Server) sortedObjects(c *Collection) []string {
	names := make([]string, 0, len(c.objects))
	for name := range c.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contentETag(body string) string {
	hash := sha256.Sum256([]byte(body))
	return `"` + base64.URLEncoding.EncodeToString(hash[:8]) + `"`
}

func writeMultistatus(w http.ResponseWriter, build func(root *etree.Element)) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("D:multistatus")
	davxml.AddNamespaces(doc)
	build(root)
	out, err := doc.WriteToString()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusMultiStatus)
	io.WriteString(w, out)
}

func addResponse(root *etree.Element, href string, props func(prop *etree.Element)) {
	resp := root.CreateElement("D:response")
	resp.CreateElement("D:href").SetText(href)
	ps := resp.CreateElement("D:propstat")
	props(ps.CreateElement("D:prop"))
	ps.CreateElement("D:status").SetText("HTTP/1.1 200 OK")
}

// requestedProps reads the prop names asked for in a PROPFIND body. An
// empty result means everything.
func requestedProps(body io.Reader) map[string]bool {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil || doc.Root() == nil {
		return nil
	}
	prop := davxml.FindChild(doc.Root(), "prop")
	if prop == nil {
		return nil
	}
	out := map[string]bool{}
	for _, child := range prop.ChildElements() {
		out[strings.ToLower(child.Tag)] = true
	}
	return out
}

func (s *Server) handlePropfind(w http.ResponseWriter, r *http.Request) {
	requested := requestedProps(r.Body)
	want := func(name string) bool { return len(requested) == 0 || requested[name] }
	path := r.URL.Path
	depth := r.Header.Get("Depth")

	switch {
	case path == "/" || path == "/.well-known/caldav" || path == "/.well-known/carddav":
		writeMultistatus(w, func(root *etree.Element) {
			addResponse(root, path, func(prop *etree.Element) {
				if want("current-user-principal") {
					prop.CreateElement("D:current-user-principal").CreateElement("D:href").SetText(s.principal)
				}
			})
		})
	case path == s.principal:
		writeMultistatus(w, func(root *etree.Element) {
			addResponse(root, path, func(prop *etree.Element) {
				if want("calendar-home-set") {
					prop.CreateElement("C:calendar-home-set").CreateElement("D:href").SetText(s.calHome)
				}
				if want("addressbook-home-set") {
					prop.CreateElement("CR:addressbook-home-set").CreateElement("D:href").SetText(s.cardHome)
				}
			})
		})
	case path == s.calHome || path == s.cardHome:
		kind := KindCalendar
		if path == s.cardHome {
			kind = KindAddressbook
		}
		writeMultistatus(w, func(root *etree.Element) {
			addResponse(root, path, func(prop *etree.Element) {
				if want("resourcetype") {
					prop.CreateElement("D:resourcetype").CreateElement("D:collection")
				}
			})
			if depth == "0" {
				return
			}
			for _, c := range s.collections {
				if c.Kind != kind {
					continue
				}
				s.addCollectionResponse(root, c, want)
			}
		})
	default:
		col, filename := s.locate(path)
		if col == nil || filename != "" {
			http.NotFound(w, r)
			return
		}
		writeMultistatus(w, func(root *etree.Element) {
			s.addCollectionResponse(root, col, want)
		})
	}
}

func (s *Server) addCollectionResponse(root *etree.Element, c *Collection, want func(string) bool) {
	addResponse(root, c.Href, func(prop *etree.Element) {
		if want("resourcetype") {
			rt := prop.CreateElement("D:resourcetype")
			rt.CreateElement("D:collection")
			if c.Kind == KindCalendar {
				rt.CreateElement("C:calendar")
			} else {
				rt.CreateElement("CR:addressbook")
			}
		}
		if want("displayname") {
			prop.CreateElement("D:displayname").SetText(c.Name)
		}
		if c.Kind == KindCalendar && c.Components != nil && want("supported-calendar-component-set") {
			set := prop.CreateElement("C:supported-calendar-component-set")
			for _, comp := range c.Components {
				set.CreateElement("C:comp").CreateAttr("name", comp)
			}
		}
	})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusInternalServerError)
		return
	}

	col, filename := s.locate(r.URL.Path)
	if col == nil {
		s.files[r.URL.Path] = &file{data: data, contentType: r.Header.Get("Content-Type")}
		w.WriteHeader(http.StatusCreated)
		return
	}
	if filename == "" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	wantType := "text/calendar"
	if col.Kind == KindAddressbook {
		wantType = "text/vcard"
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), wantType) {
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return
	}

	existing := col.objects[filename]
	ifMatch := r.Header.Get("If-Match")
	ifNone := r.Header.Get("If-None-Match")
	if existing != nil {
		if ifMatch != "" && ifMatch != existing.etag {
			http.Error(w, "Precondition Failed", http.StatusPreconditionFailed)
			return
		}
		if ifNone == "*" {
			http.Error(w, "Precondition Failed", http.StatusPreconditionFailed)
			return
		}
	} else if ifMatch != "" {
		http.Error(w, "Precondition Failed", http.StatusPreconditionFailed)
		return
	}

	obj := &object{data: string(data), etag: contentETag(string(data))}
	col.objects[filename] = obj
	w.Header().Set("ETag", obj.etag)
	if existing == nil {
		w.WriteHeader(http.StatusCreated)
	} else {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	col, filename := s.locate(r.URL.Path)
	if col == nil {
		if _, ok := s.files[r.URL.Path]; ok {
			delete(s.files, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.NotFound(w, r)
		return
	}
	if _, ok := col.objects[filename]; !ok {
		http.NotFound(w, r)
		return
	}
	delete(col.objects, filename)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	col, filename := s.locate(r.URL.Path)
	if col != nil && filename != "" {
		obj, ok := col.objects[filename]
		if !ok {
			http.NotFound(w, r)
			return
		}
		contentType := "text/calendar; charset=utf-8"
		if col.Kind == KindAddressbook {
			contentType = "text/vcard; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("ETag", obj.etag)
		io.WriteString(w, obj.data)
		return
	}
	f, ok := s.files[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if f.contentType != "" {
		w.Header().Set("Content-Type", f.contentType)
	}
	w.Write(f.data)
}
