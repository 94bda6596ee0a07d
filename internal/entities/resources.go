package entities

// AssetKind selects the loading strategy for an asset.
type AssetKind string

const (
	AssetKindImage   AssetKind = "image"
	AssetKindVideo   AssetKind = "video"
	AssetKindAudio   AssetKind = "audio"
	AssetKindModel   AssetKind = "model"
	AssetKindLink    AssetKind = "link"
	AssetKindGeneric AssetKind = "generic"
)

// ParseAssetKind normalizes authoring values. "gltf" and "glb" are models and
// anything unrecognised is loaded generically.
func ParseAssetKind(raw string) AssetKind {
	switch raw {
	case "image", "video", "audio", "model", "link":
		return AssetKind(raw)
	case "gltf", "glb":
		return AssetKindModel
	default:
		return AssetKindGeneric
	}
}

// EntityType describes how an entity is presented when its target is tracked.
type EntityType string

const (
	EntityTypeBasic EntityType = "basic"
	EntityTypeModel EntityType = "model"
	EntityTypeVideo EntityType = "video"
	EntityTypeLink  EntityType = "link"
)

// Asset is one individually loadable media resource.
type Asset struct {
	ID     string     `json:"id"`
	Kind   AssetKind  `json:"kind"`
	Src    string     `json:"src"`
	Status LoadStatus `json:"status"`
	Error  *ErrorInfo `json:"error,omitempty"`
}

// Entity is the bundle of assets rendered when a target is tracked.
// Asset order is rendering order.
type Entity struct {
	ID     string     `json:"id"`
	Type   EntityType `json:"type"`
	Assets []*Asset   `json:"assets"`
	Status LoadStatus `json:"status"`
	Error  *ErrorInfo `json:"error,omitempty"`
}

// Target is one trackable printed image and its content entity.
type Target struct {
	ID                string     `json:"id"`
	MindARTargetIndex int        `json:"mindar_target_index"`
	BookID            string     `json:"book_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	ImageTargetSrc    string     `json:"image_target_src,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	RelatedTargets    []string   `json:"related_targets,omitempty"`
	Entity            *Entity    `json:"entity,omitempty"`
	Status            LoadStatus `json:"status"`
	Error             *ErrorInfo `json:"error,omitempty"`
}

// Chapter is a book section with its own tracking image and ordered targets.
type Chapter struct {
	ID             string     `json:"id"`
	LoadID         string     `json:"load_id,omitempty"`
	Order          int        `json:"order"`
	Title          string     `json:"title"`
	FirstPage      int        `json:"first_page,omitempty"`
	LastPage       int        `json:"last_page,omitempty"`
	ImageTargetSrc string     `json:"image_target_src"`
	Targets        []*Target  `json:"targets"`
	Status         LoadStatus `json:"status"`
	Error          *ErrorInfo `json:"error,omitempty"`
}

// TargetStatuses returns the statuses of the chapter's targets in order.
func (c *Chapter) TargetStatuses() []LoadStatus {
	out := make([]LoadStatus, len(c.Targets))
	for i, t := range c.Targets {
		out[i] = t.Status
	}
	return out
}

// FindTarget returns the target with the given id.
func (c *Chapter) FindTarget(id string) (*Target, bool) {
	for _, t := range c.Targets {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// FindAsset searches every target's entity for the asset with the given id.
func (c *Chapter) FindAsset(id string) (*Asset, bool) {
	for _, t := range c.Targets {
		if t.Entity == nil {
			continue
		}
		for _, a := range t.Entity.Assets {
			if a.ID == id {
				return a, true
			}
		}
	}
	return nil, false
}

// AssetStatuses returns the statuses of the entity's assets in order.
func (e *Entity) AssetStatuses() []LoadStatus {
	out := make([]LoadStatus, len(e.Assets))
	for i, a := range e.Assets {
		out[i] = a.Status
	}
	return out
}

// FailedAssets returns the assets that ended in the error state.
func (e *Entity) FailedAssets() []*Asset {
	var failed []*Asset
	for _, a := range e.Assets {
		if a.Status == StatusError {
			failed = append(failed, a)
		}
	}
	return failed
}
