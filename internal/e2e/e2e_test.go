package e2e

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/mark3labs/swagger2hooks/internal/cli"
	"github.com/mark3labs/swagger2hooks/internal/compose"
)

// extract writes the files of a txtar fixture into a fresh directory.
func extract(t *testing.T, name string) string {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	dir := t.TempDir()
	for _, f := range ar.Files {
		p := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, f.Data, 0o600); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
	}
	return dir
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	root := cli.NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("cli execute %v: %v", args, err)
	}
}

// readTree returns every file below dir keyed by slash-separated path.
func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return out
}

func digest(tree map[string]string) (files []string, sum string) {
	for p := range tree {
		files = append(files, p)
	}
	sort.Strings(files)
	h := sha256.New()
	for _, p := range files {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte(tree[p]))
	}
	return files, hex.EncodeToString(h.Sum(nil))
}

func TestE2E_Generate_Deterministic(t *testing.T) {
	t.Parallel()
	fx := extract(t, "store.txtar")
	spec := filepath.Join(fx, "openapi.yaml")
	dir1, dir2 := t.TempDir(), t.TempDir()

	runCLI(t, "generate", "--input", spec, "--out", dir1, "--force")
	runCLI(t, "generate", "--input", spec, "--out", dir2, "--force", "--concurrency", "4")

	files1, sum1 := digest(readTree(t, dir1))
	files2, sum2 := digest(readTree(t, dir2))
	if !cmp.Equal(files1, files2) || sum1 != sum2 {
		t.Fatalf("generated outputs differ between runs\nfiles1=%v\nfiles2=%v", files1, files2)
	}
	// Orders is malformed and must not stop the other tags.
	if diff := cmp.Diff([]string{"Pets.ts", "Users.ts"}, files1); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestE2E_Generate_Contents(t *testing.T) {
	t.Parallel()
	fx := extract(t, "store.txtar")
	out := t.TempDir()
	runCLI(t, "generate", "--input", filepath.Join(fx, "openapi.yaml"), "--out", out, "--force")
	tree := readTree(t, out)

	pets := tree["Pets.ts"]
	for _, want := range []string{
		compose.Header,
		"GET_PETS: () => `/api/pets`,",
		"GET_PETS_ID: (id: number) => `/api/pets/${id}`,",
		"petsList(params?: PetsListParams): Promise<ResponseObject<PaginationList<Pet>>>;",
		"petsPartialUpdate(id: number, body: PetsPartialUpdateRequest): Promise<ResponseObject<PetsPartialUpdateResponse>>;",
		"petsDestroy(id: number): Promise<void>;",
		"export type Species = 'cat' | 'dog';",
		"export interface Owner {}",
		"/** A pet in the store. */",
		"export const usePetsList = (params: PetsListParams = {}) =>",
	} {
		if !strings.Contains(pets, want) {
			t.Errorf("Pets.ts missing %q", want)
		}
	}
	// PetBase is declared before the composite that extends it.
	if i, j := strings.Index(pets, "export interface PetBase"), strings.Index(pets, "export interface Pet {"); i < 0 || j < 0 || i > j {
		t.Errorf("expected PetBase before Pet (at %d and %d)", i, j)
	}

	users := tree["Users.ts"]
	for _, want := range []string{
		"GET_USERS_ID_MEMBERS_ID: (org: string, user_id: number) => `/api/users/${org}/members/${user_id}`,",
		`const { org, "user-id": user_id, ...query } = params;`,
		`"user-id"?: number;`,
	} {
		if !strings.Contains(users, want) {
			t.Errorf("Users.ts missing %q", want)
		}
	}
}

// stripPreamble drops the generated header and the import statements.
func stripPreamble(text string) string {
	lines := strings.Split(text, "\n")
	i := 0
	if i < len(lines) && lines[i]+"\n" == compose.Header {
		i++
	}
	for i < len(lines) {
		line := lines[i]
		switch {
		case line == "":
			i++
		case strings.HasPrefix(line, "import ") && strings.HasSuffix(line, "{"):
			for i < len(lines) && !strings.HasPrefix(lines[i], "} from ") {
				i++
			}
			i++
		case strings.HasPrefix(line, "import "):
			i++
		default:
			return strings.Join(lines[i:], "\n")
		}
	}
	return ""
}

func TestE2E_ModeEquivalence(t *testing.T) {
	t.Parallel()
	fx := extract(t, "store.txtar")
	spec := filepath.Join(fx, "openapi.yaml")
	unifiedDir, distDir := t.TempDir(), t.TempDir()

	runCLI(t, "generate", "--input", spec, "--out", unifiedDir, "--force")
	runCLI(t, "--config", filepath.Join(fx, "distributed.yaml"), "generate", "--input", spec, "--out", distDir, "--force")

	unified := readTree(t, unifiedDir)
	dist := readTree(t, distDir)
	for _, tag := range []struct{ file, pascal string }{{"Pets", "Pets"}, {"Users", "Users"}} {
		whole := stripPreamble(unified[tag.file+".ts"])
		service := stripPreamble(dist[tag.file+"/"+tag.file+".service.ts"])
		endpoints, class, ok := strings.Cut(service, "\n\nexport class ")
		if !ok {
			t.Fatalf("%s: service file has no class:\n%s", tag.file, service)
		}
		bodies := []string{
			endpoints,
			"export class " + class,
			stripPreamble(dist[tag.file+"/domains/models/"+tag.pascal+".ts"]),
			stripPreamble(dist[tag.file+"/domains/I"+tag.pascal+"Service.ts"]),
			stripPreamble(dist[tag.file+"/"+tag.file+".presentation.ts"]),
		}
		for _, body := range bodies {
			body = strings.TrimSpace(body)
			if body == "" || !strings.Contains(whole, body) {
				t.Errorf("%s: distributed body not found verbatim in unified file:\n%s", tag.file, body)
			}
		}
	}

	if !strings.Contains(dist["Pets/Pets.presentation.ts"], `from "@tanstack/vue-query";`) {
		t.Errorf("config query import not applied")
	}
}
