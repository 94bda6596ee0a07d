package entities

// Static authoring data. These types carry no loading state; the chapter
// initializer turns them into resource trees.

type AssetData struct {
	ID   string `json:"id" yaml:"id"`
	Kind string `json:"kind" yaml:"kind"`
	Src  string `json:"src" yaml:"src"`
}

type EntityData struct {
	Type   EntityType  `json:"type" yaml:"type"`
	Assets []AssetData `json:"assets" yaml:"assets"`
}

type TargetData struct {
	ID                string      `json:"id" yaml:"id"`
	MindARTargetIndex int         `json:"mindar_target_index" yaml:"mindar_target_index"`
	BookID            string      `json:"book_id" yaml:"book_id"`
	Title             string      `json:"title" yaml:"title"`
	Description       string      `json:"description" yaml:"description"`
	ImageTargetSrc    string      `json:"image_target_src,omitempty" yaml:"image_target_src"`
	Tags              []string    `json:"tags,omitempty" yaml:"tags"`
	RelatedTargets    []string    `json:"related_targets,omitempty" yaml:"related_targets"`
	Entity            *EntityData `json:"entity,omitempty" yaml:"entity"`
}

type ChapterData struct {
	ID             string       `json:"id" yaml:"id"`
	Order          int          `json:"order" yaml:"order"`
	Title          string       `json:"title" yaml:"title"`
	FirstPage      int          `json:"first_page,omitempty" yaml:"first_page"`
	LastPage       int          `json:"last_page,omitempty" yaml:"last_page"`
	ImageTargetSrc string       `json:"image_target_src" yaml:"image_target_src"`
	Targets        []TargetData `json:"targets" yaml:"targets"`
}
