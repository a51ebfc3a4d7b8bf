package ccd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindFolderArtWalksDepthTwoByMagicBytes(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "scans")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	// Not named like art, no image extension, but it's a real PNG.
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 8)...)
	if err := os.WriteFile(filepath.Join(sub, "front.bin"), png, 0o644); err != nil {
		t.Fatal(err)
	}

	got := findFolderArt(root)
	if got == nil {
		t.Fatal("expected folder art found two levels deep")
	}
}

func TestFindFolderArtIgnoresNonImageFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "readme.jpg"), []byte("not actually an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := findFolderArt(root); got != nil {
		t.Fatal("expected no art: extension lies, magic bytes don't match")
	}
}

func TestFindFolderArtStopsAtMaxDepth(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 8)...)
	if err := os.WriteFile(filepath.Join(deep, "cover.png"), png, 0o644); err != nil {
		t.Fatal(err)
	}

	if got := findFolderArt(root); got != nil {
		t.Fatal("expected art three levels deep to be out of reach")
	}
}
