package domain

// ManifestFile - файл, без которого директория не считается скиллом.
const ManifestFile = "SKILL.md"

type Skill struct {
	Name        string
	Description string
	Directory   string
}
