package insights

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopify-insights/internal/types"
)

// Content-container selectors tried, in order, on a fetched policy or
// about page. The first match wins.
var (
	policySelectors = []string{
		"main",
		".main-content",
		".page-content",
		"#MainContent",
		".shopify-policy__body",
		".policy-content",
	}
	aboutSelectors = []string{
		"main",
		".main-content",
		".page-content",
		"#MainContent",
		".about-content",
		".about-section",
	}
)

// bodyText tries each candidate path in priority order and, on each page
// that fetches, each content selector in priority order. The first selector
// that matches yields the page's flattened text; a path that fails to fetch
// or matches no selector is skipped. Exhaustion yields the empty string.
func (s *Service) bodyText(ctx context.Context, paths, selectors []string) string {
	for _, path := range paths {
		doc, err := s.fetcher.Page(ctx, s.pageURL(path))
		if err != nil {
			s.logger.Debugf("No page at %s: %v", path, err)
			continue
		}

		for _, selector := range selectors {
			content := doc.Find(selector).First()
			if content.Length() == 0 {
				continue
			}
			if text := flattenText(content); text != "" {
				return text
			}
		}
	}
	return ""
}

// faqStrategy extracts question/answer pairs from one page using a single
// structural pattern.
type faqStrategy func(*goquery.Document) []types.FAQ

var faqStrategies = []faqStrategy{
	faqsFromDefinitionLists,
	faqsFromQuestionHeadings,
	faqsFromAccordions,
}

// FAQs tries each candidate FAQ path in order and returns the combined
// findings of all strategies on the first page that yields any. Strategies
// are concatenated without deduplication, so a page marked up with both
// headings and accordions can repeat a question.
func (s *Service) FAQs(ctx context.Context) []types.FAQ {
	for _, path := range faqPaths {
		doc, err := s.fetcher.Page(ctx, s.pageURL(path))
		if err != nil {
			s.logger.Debugf("No FAQ page at %s: %v", path, err)
			continue
		}

		var faqs []types.FAQ
		for _, strategy := range faqStrategies {
			faqs = append(faqs, strategy(doc)...)
		}
		if len(faqs) > 0 {
			return faqs
		}
	}
	return nil
}

// faqsFromDefinitionLists pairs each <dt> with its following <dd>.
func faqsFromDefinitionLists(doc *goquery.Document) []types.FAQ {
	var faqs []types.FAQ
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		question := strings.TrimSpace(dt.Text())
		answer := strings.TrimSpace(dt.NextAllFiltered("dd").First().Text())
		if question != "" && answer != "" {
			faqs = append(faqs, types.FAQ{Question: question, Answer: answer})
		}
	})
	return faqs
}

var interrogatives = []string{"what", "how", "when", "where", "why", "do", "can", "is", "are"}

func looksLikeQuestion(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, word := range interrogatives {
		if strings.HasPrefix(lower, word) {
			return true
		}
	}
	return false
}

// faqsFromQuestionHeadings pairs h3/h4 headings that read like questions
// with the immediately following paragraph.
func faqsFromQuestionHeadings(doc *goquery.Document) []types.FAQ {
	var faqs []types.FAQ
	doc.Find("h3, h4").Each(func(_ int, h *goquery.Selection) {
		question := strings.TrimSpace(h.Text())
		if question == "" || !looksLikeQuestion(question) {
			return
		}
		answer := strings.TrimSpace(h.NextAllFiltered("p").First().Text())
		if answer != "" {
			faqs = append(faqs, types.FAQ{Question: question, Answer: answer})
		}
	})
	return faqs
}

const accordionAnswerSelector = ".accordion-body, .faq-answer, .accordion-content"

// faqsFromAccordions pairs accordion controls with either the element their
// aria-controls/data-target points at or the nearest following answer
// container.
func faqsFromAccordions(doc *goquery.Document) []types.FAQ {
	var faqs []types.FAQ
	doc.Find(".accordion-button, .accordion-header, .faq-question, .faq-title").Each(func(_ int, btn *goquery.Selection) {
		question := strings.TrimSpace(btn.Text())
		if question == "" {
			return
		}

		contentID, ok := btn.Attr("aria-controls")
		if !ok || contentID == "" {
			if target, hasTarget := btn.Attr("data-target"); hasTarget {
				contentID = strings.TrimPrefix(target, "#")
			}
		}

		var answer string
		if contentID != "" {
			answer = strings.TrimSpace(doc.Find("#" + contentID).First().Text())
		} else {
			answer = strings.TrimSpace(btn.NextAllFiltered(accordionAnswerSelector).First().Text())
		}

		if answer != "" {
			faqs = append(faqs, types.FAQ{Question: question, Answer: answer})
		}
	})
	return faqs
}

// flattenText collapses an element's text into single-space-separated words.
func flattenText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
