package browsertest

import "strings"

// HeaderHTML is the site navigation shared by every page. It carries the
// login dropdown for anonymous visitors and the log out link.
const HeaderHTML = `
<header id="header" class="region">
  <ul class="primary navigation actions">
    <li id="login-dropdown" class="dropdown"><a href="/users/login">Log In</a>
      <div id="small_login">
        <form action="/users/login" method="post">
          <input id="user_session_login_small" name="user[login]" type="text">
          <input id="user_session_password_small" name="user[password]" type="password">
          <input type="submit" name="commit" value="Log In">
        </form>
      </div>
    </li>
    <li class="dropdown"><a href="/users/reader">Hi, reader!</a>
      <ul class="menu">
        <li><a id="logout-link" rel="nofollow" data-method="delete" href="/users/logout">Log Out</a></li>
      </ul>
    </li>
  </ul>
</header>`

// HomeHTML is the landing page.
const HomeHTML = `<!DOCTYPE html><html><head><title>Archive</title></head><body>` + HeaderHTML + `
<div id="main"><p>Welcome.</p></div>
</body></html>`

// WorkFormHTML mirrors the structure of the "post new work" form. Gated
// controls carry data-toggles naming the id of the block they reveal.
const WorkFormHTML = `<!DOCTYPE html><html><head><title>New Work</title></head><body>` + HeaderHTML + `
<div id="main">
<form id="work-form" class="new_work" action="/works" method="post">
  <fieldset class="work meta">
    <legend>Tags</legend>
    <dl>
      <dt class="rating required">Rating</dt>
      <dd class="rating required">
        <select id="work_rating_string" name="work[rating_string]">
          <option selected="selected" value="Not Rated">Not Rated</option>
          <option value="General Audiences">General Audiences</option>
          <option value="Teen And Up Audiences">Teen And Up Audiences</option>
          <option value="Mature">Mature</option>
          <option value="Explicit">Explicit</option>
        </select>
      </dd>
      <dt class="warning required">Archive Warnings</dt>
      <dd class="warning required">
        <fieldset class="warnings">
          <ul class="options">
            <li><input type="checkbox" id="work_archive_warning_strings_choose_not_to_use_archive_warnings" name="work[archive_warning_strings][]" value="Choose Not To Use Archive Warnings"></li>
            <li><input type="checkbox" id="work_archive_warning_strings_graphic_depictions_of_violence" name="work[archive_warning_strings][]" value="Graphic Depictions Of Violence"></li>
            <li><input type="checkbox" id="work_archive_warning_strings_major_character_death" name="work[archive_warning_strings][]" value="Major Character Death"></li>
            <li><input type="checkbox" id="work_archive_warning_strings_no_archive_warnings_apply" name="work[archive_warning_strings][]" value="No Archive Warnings Apply"></li>
            <li><input type="checkbox" id="work_archive_warning_strings_rapenon-con" name="work[archive_warning_strings][]" value="Rape/Non-Con"></li>
            <li><input type="checkbox" id="work_archive_warning_strings_underage_sex" name="work[archive_warning_strings][]" value="Underage Sex"></li>
          </ul>
        </fieldset>
      </dd>
      <dt class="fandom required">Fandoms</dt>
      <dd class="fandom required">
        <ul class="autocomplete">
          <li class="input"><input class="text" type="text" id="work_fandom_autocomplete" name="work[fandom_string]"></li>
        </ul>
      </dd>
      <dt class="category">Categories</dt>
      <dd class="category">
        <fieldset>
          <ul class="options">
            <li><input type="checkbox" id="work_category_strings_ff" name="work[category_strings][]" value="F/F"></li>
            <li><input type="checkbox" id="work_category_strings_fm" name="work[category_strings][]" value="F/M"></li>
            <li><input type="checkbox" id="work_category_strings_gen" name="work[category_strings][]" value="Gen"></li>
            <li><input type="checkbox" id="work_category_strings_mm" name="work[category_strings][]" value="M/M"></li>
            <li><input type="checkbox" id="work_category_strings_multi" name="work[category_strings][]" value="Multi"></li>
            <li><input type="checkbox" id="work_category_strings_other" name="work[category_strings][]" value="Other"></li>
          </ul>
        </fieldset>
      </dd>
      <dt class="relationship">Relationships</dt>
      <dd class="relationship">
        <ul class="autocomplete">
          <li class="input"><input class="text" type="text" id="work_relationship_autocomplete" name="work[relationship_string]"></li>
        </ul>
      </dd>
      <dt class="character">Characters</dt>
      <dd class="character">
        <ul class="autocomplete">
          <li class="input"><input class="text" type="text" id="work_character_autocomplete" name="work[character_string]"></li>
        </ul>
      </dd>
      <dt class="freeform">Additional Tags</dt>
      <dd class="freeform">
        <ul class="autocomplete">
          <li class="input"><input class="text" type="text" id="work_freeform_autocomplete" name="work[freeform_string]"></li>
        </ul>
      </dd>
    </dl>
  </fieldset>

  <fieldset class="preface">
    <legend>Preface</legend>
    <dl>
      <dt class="title required">Work Title</dt>
      <dd class="title required"><input type="text" id="work_title" name="work[title]"></dd>
      <dt class="byline">Creator/Pseud(s)</dt>
      <dd class="byline">
        <select id="work_author_attributes_ids" name="work[author_attributes][ids][]">
          <option selected="selected" value="1">reader</option>
        </select>
      </dd>
      <dd class="byline coauthors">
        <input type="checkbox" id="co-authors-options-show" data-toggles="co-authors-options">
        <fieldset id="co-authors-options" hidden>
          <ul class="autocomplete">
            <li class="input"><input class="text" type="text" id="pseud_byline_autocomplete" name="pseud[byline]"></li>
          </ul>
        </fieldset>
      </dd>
      <dt class="summary">Summary</dt>
      <dd class="summary"><textarea id="work_summary" name="work[summary]"></textarea></dd>
      <dt class="notes">Notes</dt>
      <dd class="notes">
        <ul class="options">
          <li class="start">
            <input type="checkbox" id="front-notes-options-show" data-toggles="front-notes-options">
            <fieldset class="start" id="front-notes-options" hidden><textarea id="work_notes" name="work[notes]"></textarea></fieldset>
          </li>
          <li class="end">
            <input type="checkbox" id="end-notes-options-show" data-toggles="end-notes-options">
            <fieldset class="end" id="end-notes-options" hidden><textarea id="work_endnotes" name="work[endnotes]"></textarea></fieldset>
          </li>
        </ul>
      </dd>
    </dl>
  </fieldset>

  <fieldset id="associations">
    <legend>Associations</legend>
    <dl>
      <dt class="collection">Post to Collections / Challenges</dt>
      <dd class="collection">
        <ul class="autocomplete">
          <li class="input"><input class="text" type="text" id="work_collection_names_autocomplete" name="work[collection_names]"></li>
        </ul>
      </dd>
      <dt class="recipient">Gift this work to</dt>
      <dd class="recipient">
        <ul class="recipient">
          <li class="input"><input class="text" type="text" id="work_recipients_autocomplete" name="work[recipients]"></li>
        </ul>
      </dd>
      <dt class="parent"><input type="checkbox" id="parent-options-show" data-toggles="parent-options"></dt>
      <dd class="parent" id="parent-options" hidden></dd>
      <dt class="serial"><input type="checkbox" id="series-options-show" data-toggles="series-options"></dt>
      <dd class="serial" id="series-options" hidden></dd>
      <dt class="chaptered wip"><input type="checkbox" id="chapters-options-show" data-toggles="chapters-options"></dt>
      <dd class="chaptered wip" id="chapters-options" hidden></dd>
      <dt class="backdate"><input type="checkbox" id="backdate-options-show" data-toggles="backdate-options"></dt>
      <dd class="backdate" id="backdate-options" hidden></dd>
      <dt class="language required">Choose a language</dt>
      <dd class="language required">
        <select id="work_language_id" name="work[language_id]">
          <option value="">Please select a language</option>
          <option value="1">English</option>
          <option value="2">Deutsch</option>
          <option value="3">Español</option>
          <option value="4">Français</option>
          <option value="5">日本語</option>
        </select>
      </dd>
      <dt class="skin">Select Work Skin</dt>
      <dd class="skin">
        <select id="work_work_skin_id" name="work[work_skin_id]">
          <option selected="selected" value="">None</option>
          <option value="101">Basic Formatting</option>
          <option value="102">Homestuck Skin</option>
        </select>
      </dd>
    </dl>
  </fieldset>

  <fieldset class="content">
    <legend>Work Text</legend>
    <textarea id="content" name="chapter[content]"></textarea>
  </fieldset>

  <fieldset class="create">
    <ul class="actions">
      <li><input type="submit" name="save_button" value="Save As Draft"></li>
      <li><input type="submit" name="preview_button" value="Preview"></li>
    </ul>
  </fieldset>
</form>
</div>
</body></html>`

// DraftHTML is the page shown after a work was saved as a draft.
const DraftHTML = `<!DOCTYPE html><html><head><title>Draft</title></head><body>` + HeaderHTML + `
<div id="main"><div class="flash notice">Draft was successfully created.</div>
<div id="workskin"><h2 class="title heading">Untitled</h2></div></div>
</body></html>`

// RejectedHTML is the form as re-rendered at /works when the archive refuses
// to save it.
var RejectedHTML = strings.Replace(WorkFormHTML, `<div id="main">`, `<div id="main">
<div id="error" class="error">
  <h4>Sorry! We couldn't save this work because:</h4>
  <ul><li>Fandom is missing.</li><li>Title can't be blank.</li></ul>
</div>`, 1)
