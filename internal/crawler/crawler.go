package crawler

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hunter-market/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const baseURL = "https://everytime.kr"

// Crawler walks the campus marketplace board and stores new posts. Already
// stored URLs are skipped, so re-runs only pick up what is new.
type Crawler struct {
	db      *gorm.DB
	boardID string
	cookie  string
}

func New(db *gorm.DB, boardID, cookie string) *Crawler {
	return &Crawler{db: db, boardID: boardID, cookie: cookie}
}

// Run crawls up to maxPages board pages and returns how many new posts were
// saved.
func (cr *Crawler) Run(maxPages int) (int, error) {
	if cr.cookie == "" {
		return 0, errors.New("login cookie is required (EVERYTIME_COOKIE)")
	}
	if maxPages <= 0 {
		maxPages = 5
	}

	existing, err := cr.existingURLs()
	if err != nil {
		return 0, err
	}

	c := colly.NewCollector(
		colly.AllowedDomains("everytime.kr", "www.everytime.kr"),
		colly.UserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	c.SetRequestTimeout(30 * time.Second)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: 2 * time.Second, RandomDelay: 2 * time.Second})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Cookie", cr.cookie)
	})
	c.OnError(func(r *colly.Response, err error) {
		log.Printf("[crawler] %s: %v", r.Request.URL, err)
	})

	saved := 0

	// Board page: collect article links and visit the new ones.
	c.OnHTML("article", func(e *colly.HTMLElement) {
		href, ok := e.DOM.Find("a").Attr("href")
		if !ok || href == "" {
			return
		}
		articleURL := baseURL + href
		if _, seen := existing[articleURL]; seen {
			return
		}
		_ = e.Request.Visit(articleURL)
	})

	// Article page: extract the post and persist it.
	c.OnHTML("html", func(e *colly.HTMLElement) {
		if !strings.Contains(e.Request.URL.Path, "/v/") {
			return
		}
		post, ok := parseArticle(e.DOM, e.Request.URL.String())
		if !ok {
			return
		}
		if _, seen := existing[post.URL]; seen {
			return
		}

		err := cr.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&post).Error
		if err != nil {
			log.Printf("[crawler] failed to save %s: %v", post.URL, err)
			return
		}
		existing[post.URL] = struct{}{}
		saved++
		log.Printf("[crawler] saved: %s (%s)", post.Title, post.URL)
	})

	for page := 1; page <= maxPages; page++ {
		pageURL := fmt.Sprintf("%s/%s/p/%d", baseURL, cr.boardID, page)
		if err := c.Visit(pageURL); err != nil {
			log.Printf("[crawler] visit %s: %v", pageURL, err)
		}
	}
	c.Wait()

	return saved, nil
}

// parseArticle pulls title, body, author, date and image out of an article
// page. Selectors mirror the board's markup; missing pieces degrade to
// defaults rather than dropping the post.
func parseArticle(doc *goquery.Selection, url string) (models.EverytimePost, bool) {
	title := strings.TrimSpace(doc.Find("h2.large").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h2").First().Text())
	}
	content := strings.TrimSpace(doc.Find("p.large").First().Text())
	if content == "" {
		content = strings.TrimSpace(doc.Find("p.text").First().Text())
	}
	if title == "" && content == "" {
		return models.EverytimePost{}, false
	}

	author := strings.TrimSpace(doc.Find("h3.large").First().Text())
	if author == "" {
		author = "익명"
	}

	image := models.NoImageSentinel
	if src, ok := doc.Find("figure.attach img").First().Attr("src"); ok && src != "" {
		image = src
	}

	createdAt := parsePostTime(strings.TrimSpace(doc.Find("time.large").First().Text()))

	return models.EverytimePost{
		Title:     title,
		Content:   content,
		Author:    author,
		ImageURL:  image,
		URL:       url,
		CreatedAt: createdAt,
	}, true
}

// parsePostTime handles the board's "MM/DD HH:MM" and "YY/MM/DD HH:MM"
// formats; anything else falls back to now.
func parsePostTime(raw string) time.Time {
	now := time.Now()
	if raw == "" {
		return now
	}
	if t, err := time.ParseInLocation("06/01/02 15:04", raw, time.Local); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("01/02 15:04", raw, time.Local); err == nil {
		return t.AddDate(now.Year(), 0, 0)
	}
	return now
}

func (cr *Crawler) existingURLs() (map[string]struct{}, error) {
	var urls []string
	if err := cr.db.Model(&models.EverytimePost{}).Pluck("url", &urls).Error; err != nil {
		return nil, fmt.Errorf("failed to load existing urls: %w", err)
	}
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set, nil
}
