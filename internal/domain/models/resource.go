package models

// ResourceKind names a node type of the workspace tree.
type ResourceKind string

const (
	KindWorkspace ResourceKind = "workspace"
	KindSpace     ResourceKind = "space"
	KindFolder    ResourceKind = "folder"
	KindList      ResourceKind = "list"
	KindTemplate  ResourceKind = "template"
	KindField     ResourceKind = "field"
	KindTask      ResourceKind = "task"
	KindMember    ResourceKind = "member"
)

// ResourceRef identifies one resource in the tree.
type ResourceRef struct {
	Kind ResourceKind
	ID   string
}

// WorkspaceRef is a convenience constructor.
func WorkspaceRef(id string) ResourceRef { return ResourceRef{Kind: KindWorkspace, ID: id} }

// SpaceRef is a convenience constructor.
func SpaceRef(id string) ResourceRef { return ResourceRef{Kind: KindSpace, ID: id} }

// FolderRef is a convenience constructor.
func FolderRef(id string) ResourceRef { return ResourceRef{Kind: KindFolder, ID: id} }

// ListRef is a convenience constructor.
func ListRef(id string) ResourceRef { return ResourceRef{Kind: KindList, ID: id} }

// FieldRef is a convenience constructor.
func FieldRef(id string) ResourceRef { return ResourceRef{Kind: KindField, ID: id} }

// TaskRef is a convenience constructor.
func TaskRef(id string) ResourceRef { return ResourceRef{Kind: KindTask, ID: id} }
