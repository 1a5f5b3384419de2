package formats

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseMTL reads a Wavefront material library and returns the diffuse
// texture (map_Kd) of every material that has one. Only the first map_Kd
// after a newmtl is used.
func ParseMTL(r io.Reader) (map[string]string, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	textures := make(map[string]string)
	current := ""
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "newmtl":
			current = fields[1]
		case "map_Kd":
			if current == "" {
				continue
			}
			// Options such as "-s 1 1 1" precede the file name.
			textures[current] = fields[len(fields)-1]
			current = ""
		}
	}
	return textures, nil
}

// MaterialName returns the name WriteOBJ and WriteMTL give the material of
// the i-th texture (0-based).
func MaterialName(i int) string {
	return fmt.Sprintf("material%d_auv", i+1)
}

// WriteMTL writes one material per texture with flat white shading
// coefficients and the texture as its diffuse map.
func WriteMTL(w io.Writer, textures []string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# exported by meshconv\n")
	for i, tex := range textures {
		fmt.Fprintf(bw, "newmtl %s\n", MaterialName(i))
		fmt.Fprintf(bw, "Ns 100.000\n")
		fmt.Fprintf(bw, "d 1.00000\n")
		fmt.Fprintf(bw, "illum 2\n")
		fmt.Fprintf(bw, "Kd 1.00000 1.00000 1.00000\n")
		fmt.Fprintf(bw, "Ka 1.00000 1.00000 1.00000\n")
		fmt.Fprintf(bw, "Ks 1.00000 1.00000 1.00000\n")
		fmt.Fprintf(bw, "map_Kd %s\n\n", tex)
	}
	return bw.Flush()
}
