package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_IndexesEveryTrigger(t *testing.T) {
	c := NewCatalogue()
	chop := &Action{Triggers: []string{"chop", "Cut  Down"}, Subjects: []string{"tree"}, Narration: "chopped"}
	require.NoError(t, c.Register(chop))

	assert.Equal(t, []*Action{chop}, c.Lookup("CHOP"))
	assert.Equal(t, []*Action{chop}, c.Lookup("cut down"))
	assert.Empty(t, c.Lookup("cut"))
	assert.Equal(t, []string{"chop", "cut down"}, c.Triggers())
}

func TestRegister_SharedTrigger(t *testing.T) {
	c := NewCatalogue()
	a := &Action{Triggers: []string{"open"}, Subjects: []string{"door"}}
	b := &Action{Triggers: []string{"open", "open"}, Subjects: []string{"box"}}
	require.NoError(t, c.Register(a))
	require.NoError(t, c.Register(b))

	assert.Equal(t, []*Action{a, b}, c.Lookup("open"))
	assert.Equal(t, 2, c.Len())
}

func TestRegister_RejectsInvalid(t *testing.T) {
	c := NewCatalogue()
	assert.Error(t, c.Register(&Action{Subjects: []string{"x"}}))
	assert.Error(t, c.Register(&Action{Triggers: []string{" "}, Subjects: []string{"x"}}))
	assert.Error(t, c.Register(&Action{Triggers: []string{"go"}}))
	assert.Zero(t, c.Len())
}

func TestHasSubject_CaseInsensitive(t *testing.T) {
	a := &Action{Subjects: []string{"Trapdoor", "key"}}
	assert.True(t, a.HasSubject("trapdoor"))
	assert.True(t, a.HasSubject("KEY"))
	assert.False(t, a.HasSubject("axe"))
}

func TestLoadXML(t *testing.T) {
	data := `<?xml version="1.0"?>
<actions>
  <action>
    <triggers><keyphrase> open </keyphrase><keyphrase>unlock</keyphrase></triggers>
    <subjects><entity>trapdoor</entity><entity>key</entity></subjects>
    <consumed><entity>key</entity></consumed>
    <produced><entity>cellar</entity></produced>
    <narration>
      You unlock the trapdoor
    </narration>
  </action>
  <action>
    <triggers><keyphrase>fight</keyphrase></triggers>
    <subjects><entity>elf</entity></subjects>
    <consumed><entity>health</entity></consumed>
    <produced></produced>
    <narration>Ouch</narration>
  </action>
</actions>`
	c, err := LoadXML([]byte(data))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	open := c.Lookup("open")
	require.Len(t, open, 1)
	assert.Equal(t, []string{"open", "unlock"}, open[0].Triggers)
	assert.Equal(t, []string{"trapdoor", "key"}, open[0].Subjects)
	assert.Equal(t, []string{"key"}, open[0].Consumed)
	assert.Equal(t, []string{"cellar"}, open[0].Produced)
	assert.Equal(t, "You unlock the trapdoor", open[0].Narration)

	fight := c.Lookup("fight")
	require.Len(t, fight, 1)
	assert.Equal(t, []string{Health}, fight[0].Consumed)
	assert.Empty(t, fight[0].Produced)
}

func TestLoadXML_Errors(t *testing.T) {
	_, err := LoadXML([]byte("<actions><action>"))
	assert.Error(t, err)

	_, err = LoadXML([]byte("<actions></actions>"))
	assert.ErrorIs(t, err, ErrNoActions)

	_, err = LoadXML([]byte("<actions><action><subjects><entity>x</entity></subjects></action></actions>"))
	assert.Error(t, err)
}

func TestLoadFile_Content(t *testing.T) {
	basic, err := LoadFile("../../../content/basic-actions.xml")
	require.NoError(t, err)
	assert.Equal(t, 4, basic.Len())
	assert.Len(t, basic.Lookup("cut down"), 1)

	extended, err := LoadFile("../../../content/extended-actions.xml")
	require.NoError(t, err)
	assert.Equal(t, 8, extended.Len())
	dig := extended.Lookup("dig")
	require.Len(t, dig, 1)
	assert.Equal(t, []string{"hole", "gold"}, dig[0].Produced)
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile("/nonexistent/actions.xml")
	assert.Error(t, err)
}
