package books

import (
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/5w1tchy/bookshelf/internal/api/views"
	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

const (
	msgListError    = "There was an error retrieving your books, please reload this page."
	msgNoTerm       = "Please enter a search term first."
	msgSearchError  = "There was an error with that search, please try again."
	msgGenericError = "There was an error, please try that action again."
	msgAddFailed    = "There was an error trying to add this book, please try again."
	msgAdded        = "This book has been added to your library."
	msgUpdateFailed = "There was an error trying to update this book, please try again."
	msgDeleteFailed = "There was a problem attempting to delete this book, please try again."
	msgExportFailed = "There was a problem exporting your library, please try again."
	msgLookupFailed = "Book lookup failed"
	maxFieldRunes   = 255
	bannerSuccess   = "success"
	bannerDanger    = "danger"
)

func (h *Handler) page(title string) views.Page {
	return views.Page{Title: title, Base: h.base}
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, p views.Page) {
	if err := h.views.Render(w, status, name, p); err != nil {
		log.Printf("[books] render %s failed: %v", name, err)
	}
}

// renderBooksError shows the listing page with a danger banner and no rows.
func (h *Handler) renderBooksError(w http.ResponseWriter, msg string) {
	p := h.page("Library")
	p.MessageType, p.Message = bannerDanger, msg
	h.render(w, http.StatusOK, views.Books, p)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, path string, q url.Values) {
	target := h.base + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func successValue(ok bool) string {
	if ok {
		return "1"
	}
	return "0"
}

// formInput maps the add/update form onto a store input. The store applies
// the final whitespace and Unicode normalization.
func formInput(r *http.Request) (storebooks.Input, error) {
	var in storebooks.Input
	if err := r.ParseForm(); err != nil {
		return in, err
	}

	var err error
	if in.Author, err = validate.RequireBounded("author", storebooks.SanitizeString(r.PostFormValue("author")), 1, maxFieldRunes); err != nil {
		return in, err
	}
	if in.Title, err = validate.RequireBounded("title", storebooks.SanitizeString(r.PostFormValue("title")), 1, maxFieldRunes); err != nil {
		return in, err
	}

	fks := []struct {
		name string
		dst  *int64
	}{
		{"type", &in.TypeID},
		{"sub_type", &in.SubTypeID},
		{"language", &in.LanguageID},
		{"location", &in.LocationID},
	}
	for _, fk := range fks {
		if *fk.dst, err = validate.ParseID(fk.name, r.PostFormValue(fk.name)); err != nil {
			return in, err
		}
	}
	return in, nil
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }
