package workflow

import (
	"context"

	"content-commerce/backend/internal/pipeline"
)

func (p *Pipelines) addMentionOnComment() pipeline.Factory[MentionState] {
	return pipeline.Func("AddMentionOnComment", func(ctx context.Context, s *MentionState) error {
		u := s.PipelineUser()
		if u == nil {
			return pipeline.Stop("no user to mention")
		}
		if s.Comment == nil {
			return pipeline.Stop("comment not found")
		}
		if err := p.deps.Social.AddMention(ctx, s.Comment.ID, u.ID); err != nil {
			return err
		}
		if !s.Comment.HasMention(u.ID) {
			s.Comment.MentionIDs = append(s.Comment.MentionIDs, u.ID)
		}
		return nil
	})
}
