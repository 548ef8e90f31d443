package articles

import (
	"net/url"
	"strings"
)

// UnknownPress labels articles whose source cannot be determined.
const UnknownPress = "출처 미상"

// pressByHost maps publisher hosts to their display names.
var pressByHost = map[string]string{
	"news.naver.com":     "네이버 뉴스",
	"n.news.naver.com":   "네이버 뉴스",
	"hani.co.kr":         "한겨레",
	"chosun.com":         "조선일보",
	"joongang.co.kr":     "중앙일보",
	"donga.com":          "동아일보",
	"khan.co.kr":         "경향신문",
	"ohmynews.com":       "오마이뉴스",
	"pressian.com":       "프레시안",
	"mk.co.kr":           "매일경제",
	"kmib.co.kr":         "국민일보",
	"sisajournal.com":    "시사저널",
	"newsis.com":         "뉴시스",
	"seoul.co.kr":        "서울신문",
	"sbs.co.kr":          "SBS",
	"jtbc.co.kr":         "JTBC",
	"yonhapnewstv.co.kr": "연합뉴스TV",
}

// SourceLabel picks the display label for an article: the explicit source
// when given, else a known publisher for the link host, else the bare host.
func SourceLabel(source *string, link string) string {
	if source != nil {
		if s := strings.TrimSpace(*source); s != "" {
			return s
		}
	}

	host := Host(link)
	if host == "" {
		return UnknownPress
	}
	for h := host; h != ""; {
		if label, ok := pressByHost[h]; ok {
			return label
		}
		i := strings.IndexByte(h, '.')
		if i < 0 {
			break
		}
		h = h[i+1:]
	}
	return host
}

// Host returns the lower-cased hostname of link without "www." or "m.".
func Host(link string) string {
	u, err := url.Parse(UnescapeLink(link))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	return host
}
