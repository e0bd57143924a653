package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const portadaHTML = `<!DOCTYPE html>
<html>
<body>
<nav><a href="/">Inicio</a></nav>
<section>
<h2><a href="/nota/choque-garza-sada">Fuerte choque en avenida Garza Sada deja dos heridos</a></h2>
<p>El accidente ocurrió hace 30 minutos a la altura de Alfonso Reyes.</p>
<h2><a href="/nota/choque-garza-sada">Fuerte choque en avenida Garza Sada deja dos heridos</a></h2>
<h3><a href="https://otro.example.com/nota/incendio">Incendio consume bodega en la colonia Moderna</a></h3>
<h3><a href="/corto">Breve</a></h3>
<h2>Titular sin enlace que debe ser ignorado por completo</h2>
</section>
</body>
</html>`

const articleHTML = `<!DOCTYPE html>
<html>
<head><script>var tracking = true;</script></head>
<body>
<nav>Inicio | Policiaca | Deportes</nav>
<article>
<h1>Fuerte choque en avenida Garza Sada</h1>
<p>Un choque múltiple se registró hace 30 minutos en avenida Garza Sada,
a la altura de Alfonso Reyes. Servicios de emergencia acudieron al lugar.</p>
</article>
<footer>Todos los derechos reservados</footer>
</body>
</html>`

func TestScrape_HarvestsHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(portadaHTML))
	}))
	defer srv.Close()

	s := New(5)
	items := s.Scrape(context.Background(), Source{Name: "test", URL: srv.URL})

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (dedupe, short titles and linkless headers dropped)", len(items))
	}

	first := items[0]
	if first.Title != "Fuerte choque en avenida Garza Sada deja dos heridos" {
		t.Errorf("Title: got %q", first.Title)
	}
	if !strings.Contains(first.Body, "hace 30 minutos") {
		t.Errorf("Body should come from the following paragraph, got %q", first.Body)
	}
	if first.URL != srv.URL+"/nota/choque-garza-sada" {
		t.Errorf("relative URL not resolved: got %q", first.URL)
	}
	if first.Source != "test" {
		t.Errorf("Source: got %q", first.Source)
	}

	if items[1].URL != "https://otro.example.com/nota/incendio" {
		t.Errorf("absolute URL must pass through unchanged: got %q", items[1].URL)
	}
}

func TestScrape_UnreachableSource(t *testing.T) {
	s := New(1)
	items := s.Scrape(context.Background(), Source{Name: "down", URL: "http://127.0.0.1:1/nope"})
	if len(items) != 0 {
		t.Errorf("unreachable source must yield no items, got %d", len(items))
	}
}

func TestScrape_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(5)
	if items := s.Scrape(context.Background(), Source{Name: "test", URL: srv.URL}); len(items) != 0 {
		t.Errorf("non-200 must yield no items, got %d", len(items))
	}
}

func TestTruncateUTF8_RuneBoundary(t *testing.T) {
	long := strings.Repeat("ó", 40)
	got := truncateUTF8(long, 15)
	if len(got) != 14 {
		t.Errorf("length: got %d, want 14 (backed up to rune boundary)", len(got))
	}
	for _, r := range got {
		if r != 'ó' {
			t.Fatalf("truncation corrupted a rune: %q", got)
		}
	}
}

func TestArticleContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	s := New(5)
	text := s.ArticleContent(context.Background(), srv.URL)

	if !strings.Contains(text, "choque múltiple") {
		t.Errorf("article body missing, got %q", text)
	}
	if strings.Contains(text, "tracking") {
		t.Error("script content must be stripped")
	}
	if strings.Contains(text, "Policiaca") {
		t.Error("nav content must be stripped")
	}
	if strings.Contains(text, "derechos reservados") {
		t.Error("footer content must be stripped")
	}
	if strings.Contains(text, "\n") {
		t.Error("whitespace runs must be collapsed")
	}
}
