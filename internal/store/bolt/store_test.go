package bolt_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store/bolt"
)

func record(id string, createdAt int64) interview.Record {
	return interview.Record{
		ID:        id,
		CreatedAt: createdAt,
		Config:    interview.Config{JobTitle: "Backend Engineer", Company: "Acme", InterviewType: interview.TypeTechnical},
		History: []interview.Message{
			{Role: interview.RoleModel, Text: "请做个自我介绍。", Timestamp: createdAt - 2000},
			{Role: interview.RoleUser, Text: "我是一名后端工程师。", Timestamp: createdAt - 1000},
		},
		Feedback: interview.Feedback{
			Score:          80,
			Pros:           []string{"表达清晰"},
			Cons:           []string{},
			Suggestions:    []string{"补充项目细节"},
			OverallSummary: "不错",
		},
	}
}

var _ = Describe("Store", func() {
	var (
		ctx  context.Context
		path string
		s    *bolt.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		path = filepath.Join(GinkgoT().TempDir(), "data", "interviews.bolt")

		var err error
		s, err = bolt.Open(path)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			Expect(s.Close()).To(Succeed())
		})
	})

	Describe("Create and Get", func() {
		It("should round trip a record", func() {
			rec := record("a", 1_700_000_000_000)
			Expect(s.Create(ctx, rec)).To(Succeed())

			got, err := s.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(rec))
		})

		It("should refuse to overwrite an existing record", func() {
			Expect(s.Create(ctx, record("a", 1))).To(Succeed())
			Expect(s.Create(ctx, record("a", 2))).To(MatchError(store.ErrAlreadyExists))

			got, err := s.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CreatedAt).To(Equal(int64(1)))
		})

		It("should return ErrNotFound for unknown ids", func() {
			_, err := s.Get(ctx, "missing")
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("List", func() {
		It("should return an empty list for a fresh database", func() {
			got, err := s.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got).To(BeEmpty())
		})

		It("should order records newest first", func() {
			Expect(s.Create(ctx, record("old", 100))).To(Succeed())
			Expect(s.Create(ctx, record("new", 300))).To(Succeed())
			Expect(s.Create(ctx, record("mid", 200))).To(Succeed())

			got, err := s.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(3))
			Expect([]string{got[0].ID, got[1].ID, got[2].ID}).To(Equal([]string{"new", "mid", "old"}))
		})
	})

	Describe("Delete", func() {
		It("should remove the record", func() {
			Expect(s.Create(ctx, record("a", 1))).To(Succeed())
			Expect(s.Delete(ctx, "a")).To(Succeed())

			_, err := s.Get(ctx, "a")
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("should return ErrNotFound when nothing was deleted", func() {
			Expect(s.Delete(ctx, "missing")).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("persistence", func() {
		It("should keep records across reopen", func() {
			Expect(s.Create(ctx, record("a", 1))).To(Succeed())
			Expect(s.Close()).To(Succeed())

			reopened, err := bolt.Open(path)
			Expect(err).NotTo(HaveOccurred())
			s = reopened

			got, err := s.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("a"))
		})
	})
})
