package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/internal/executor/repository"

	"github.com/stretchr/testify/assert"
)

func candidate(url, title string) dto.DocumentCandidate {
	return dto.DocumentCandidate{
		PDFURL:          url,
		Title:           title,
		PublicationDate: time.Date(2025, 8, 1, 15, 0, 0, 0, time.UTC),
		SourceName:      "test",
	}
}

func TestCollectCandidatesMergesSources(t *testing.T) {
	a := NewCandidateAggregator(testLogger(), []repository.DisclosureSourceRepository{
		&fakeSource{name: "a", candidates: []dto.DocumentCandidate{
			candidate("https://example.com/1.pdf", "2026年3月期 第1四半期決算短信"),
		}},
		&fakeSource{name: "b", candidates: []dto.DocumentCandidate{
			candidate("https://example.com/2.pdf", "2026年3月期 決算説明資料"),
		}},
	})

	got := a.CollectCandidates(context.Background(), "7203")
	assert.Len(t, got, 2)
}

func TestCollectCandidatesIsolatesFailingSource(t *testing.T) {
	a := NewCandidateAggregator(testLogger(), []repository.DisclosureSourceRepository{
		&fakeSource{name: "broken", err: errors.New("connection refused")},
		&fakeSource{name: "ok", candidates: []dto.DocumentCandidate{
			candidate("https://example.com/1.pdf", "2026年3月期 決算短信"),
		}},
	})

	got := a.CollectCandidates(context.Background(), "7203")
	assert.Len(t, got, 1)
	assert.Equal(t, "https://example.com/1.pdf", got[0].PDFURL)
}

func TestFilterCandidatesDedupsByURLFirstWins(t *testing.T) {
	a := NewCandidateAggregator(testLogger(), nil)

	first := candidate("https://example.com/1.pdf", "2026年3月期 決算短信")
	first.SourceName = "first"
	second := candidate("https://example.com/1.pdf", "2026年3月期 決算短信〔日本基準〕")
	second.SourceName = "second"

	got := a.FilterCandidates([]dto.DocumentCandidate{first, second})
	assert.Len(t, got, 1)
	assert.Equal(t, "first", got[0].SourceName)
}

func TestFilterCandidatesDropsIrrelevantTitles(t *testing.T) {
	a := NewCandidateAggregator(testLogger(), nil)

	got := a.FilterCandidates([]dto.DocumentCandidate{
		candidate("https://example.com/1.pdf", "剰余金の配当に関するお知らせ"),
		candidate("https://example.com/2.pdf", "役員の異動に関するお知らせ"),
		candidate("https://example.com/3.pdf", "2026年3月期 決算短信"),
		candidate("https://example.com/4.pdf", "中期経営計画の策定に関するお知らせ"),
	})

	assert.Len(t, got, 2)
	assert.Equal(t, "https://example.com/3.pdf", got[0].PDFURL)
	assert.Equal(t, "https://example.com/4.pdf", got[1].PDFURL)
}
