package chapters

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mrlokans/bookar/internal/entities"
)

// Initializer turns static chapter definitions into fresh resource trees.
type Initializer struct {
	newLoadID func() string
}

func NewInitializer() *Initializer {
	return &Initializer{newLoadID: uuid.NewString}
}

// Initialize builds a chapter tree with every node in the initial state. The
// tree shares nothing with data, and two calls on the same data produce
// structurally equal trees apart from LoadID.
func (i *Initializer) Initialize(data entities.ChapterData) *entities.Chapter {
	chapter := &entities.Chapter{
		ID:             data.ID,
		LoadID:         i.newLoadID(),
		Order:          data.Order,
		Title:          data.Title,
		FirstPage:      data.FirstPage,
		LastPage:       data.LastPage,
		ImageTargetSrc: data.ImageTargetSrc,
		Targets:        make([]*entities.Target, len(data.Targets)),
		Status:         entities.StatusInitial,
	}

	for ti, td := range data.Targets {
		targetID := td.ID
		if targetID == "" {
			targetID = fmt.Sprintf("%s-t%d", data.ID, ti)
		}

		target := &entities.Target{
			ID:                targetID,
			MindARTargetIndex: td.MindARTargetIndex,
			BookID:            td.BookID,
			Title:             td.Title,
			Description:       td.Description,
			ImageTargetSrc:    td.ImageTargetSrc,
			Tags:              append([]string(nil), td.Tags...),
			RelatedTargets:    append([]string(nil), td.RelatedTargets...),
			Status:            entities.StatusInitial,
		}

		if td.Entity != nil {
			entity := &entities.Entity{
				ID:     targetID + "-entity",
				Type:   td.Entity.Type,
				Assets: make([]*entities.Asset, len(td.Entity.Assets)),
				Status: entities.StatusInitial,
			}
			if entity.Type == "" {
				entity.Type = entities.EntityTypeBasic
			}
			for ai, ad := range td.Entity.Assets {
				assetID := ad.ID
				if assetID == "" {
					assetID = fmt.Sprintf("%s-a%d", targetID, ai)
				}
				entity.Assets[ai] = &entities.Asset{
					ID:     assetID,
					Kind:   entities.ParseAssetKind(ad.Kind),
					Src:    ad.Src,
					Status: entities.StatusInitial,
				}
			}
			target.Entity = entity
		}

		chapter.Targets[ti] = target
	}

	return chapter
}

// MarkLoading returns a copy of c in the loading state. Targets, entities and
// assets stay initial until the loader reaches them.
func MarkLoading(c *entities.Chapter) *entities.Chapter {
	return c.WithStatus(entities.StatusLoading, nil)
}
