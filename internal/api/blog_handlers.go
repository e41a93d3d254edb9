package api

import (
	"net/http"

	"github.com/Picces04/ToyStore-Client/internal/blog"
	"github.com/Picces04/ToyStore-Client/internal/storefront"
	"github.com/go-chi/chi/v5"
)

type searchRequest struct {
	Search string `json:"search"`
}

// Blog Handlers

func (h *Handlers) GetBlogs(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	h.respondBlog(w, r, sf, sf.Blog.Load())
}

func (h *Handlers) SetBlogPage(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req pageRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	gen, err := sf.Blog.SetPage(req.Page)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondBlog(w, r, sf, gen)
}

func (h *Handlers) SetBlogSearch(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if err := decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondBlog(w, r, sf, sf.Blog.SetSearch(req.Search))
}

func (h *Handlers) LatestBlogs(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}

	posts, err := sf.Blog.Latest(r.Context(), h.listSize(r, "n", h.opts.LatestPosts))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if posts == nil {
		posts = []blog.Post{}
	}
	respondJSON(w, r, http.StatusOK, posts)
}

func (h *Handlers) GetBlog(w http.ResponseWriter, r *http.Request) {
	sf, ok := h.storefront(w, r)
	if !ok {
		return
	}

	post, err := sf.Blog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, post)
}

func (h *Handlers) respondBlog(w http.ResponseWriter, r *http.Request, sf *storefront.Storefront, gen uint64) {
	h.settle(r, sf.Blog.Wait, gen)
	respondJSON(w, r, http.StatusOK, sf.Blog.Snapshot())
}
