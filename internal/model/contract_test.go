package model

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadContract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "beautychain.sol")
	src := "pragma solidity ^0.4.16;\ncontract BecToken {}\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadContract(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "beautychain" {
		t.Errorf("Name = %q, want beautychain", c.Name)
	}
	if c.Pragma != "^0.4.16" {
		t.Errorf("Pragma = %q, want ^0.4.16", c.Pragma)
	}
	if !filepath.IsAbs(c.Path) {
		t.Errorf("Path should be absolute, got %s", c.Path)
	}
}

func TestLoadContract_Missing(t *testing.T) {
	_, err := LoadContract(filepath.Join(t.TempDir(), "nope.sol"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadContract_WrongExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.txt")
	if err := os.WriteFile(path, []byte("not solidity"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadContract(path)
	if err == nil {
		t.Fatal("expected error for non-.sol file")
	}
}

func TestPragmaVersions(t *testing.T) {
	src := `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.19;
contract A {}
pragma solidity >=0.7.0 <0.9.0;
`
	got := PragmaVersions(src)
	want := []string{"^0.8.19", ">=0.7.0 <0.9.0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PragmaVersions = %v, want %v", got, want)
	}
}
